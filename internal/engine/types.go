package engine

// Seeds identify a reproducible random stream.
type Seeds struct {
	Server string `json:"server_seed"` // ASCII; never hex-decoded
	Client string `json:"client_seed"`
}

// Valid reports whether both seeds are present.
func (s Seeds) Valid() bool {
	return s.Server != "" && s.Client != ""
}
