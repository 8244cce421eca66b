package engine

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sync"
)

// ByteGenerator streams HMAC-SHA256 output for one (seeds, nonce) pair.
// Each 32-byte round is HMAC(server, "client:nonce:round").
type ByteGenerator struct {
	serverSeed string
	clientSeed string
	nonce      uint64
	round      uint64
	pos        int
	buffer     [32]byte
}

// NewByteGenerator positions a generator at cursor bytes into the stream.
func NewByteGenerator(serverSeed, clientSeed string, nonce uint64, cursor uint64) *ByteGenerator {
	bg := &ByteGenerator{
		serverSeed: serverSeed,
		clientSeed: clientSeed,
		nonce:      nonce,
		round:      cursor / 32,
		pos:        int(cursor % 32),
	}
	bg.generateRound()
	return bg
}

// Next returns the next byte.
func (bg *ByteGenerator) Next() byte {
	if bg.pos >= 32 {
		bg.round++
		bg.pos = 0
		bg.generateRound()
	}
	b := bg.buffer[bg.pos]
	bg.pos++
	return b
}

// NextFloat consumes 4 bytes and returns a float in [0,1).
func (bg *ByteGenerator) NextFloat() float64 {
	return bytesToFloat([4]byte{bg.Next(), bg.Next(), bg.Next(), bg.Next()})
}

func (bg *ByteGenerator) generateRound() {
	h := hmac.New(sha256.New, []byte(bg.serverSeed))
	fmt.Fprintf(h, "%s:%d:%d", bg.clientSeed, bg.nonce, bg.round)
	copy(bg.buffer[:], h.Sum(nil))
}

// bytesToFloat computes b0/256 + b1/256^2 + b2/256^3 + b3/256^4.
func bytesToFloat(bytes [4]byte) float64 {
	result := 0.0
	for i, b := range bytes {
		result += float64(b) / math.Pow(256, float64(i+1))
	}
	return result
}

// Floats returns count floats starting at byte offset cursor.
func Floats(serverSeed, clientSeed string, nonce uint64, cursor uint64, count int) []float64 {
	bg := NewByteGenerator(serverSeed, clientSeed, nonce, cursor)
	floats := make([]float64, count)
	for i := range floats {
		floats[i] = bg.NextFloat()
	}
	return floats
}

// Stream hands out successive floats for a single game session. It is safe
// for concurrent use so a snake ticker and an input handler may share one.
type Stream struct {
	mu    sync.Mutex
	seeds Seeds
	nonce uint64
	gen   *ByteGenerator
	drawn int
}

// NewStream opens the stream for seeds and nonce at cursor 0.
func NewStream(seeds Seeds, nonce uint64) *Stream {
	return &Stream{
		seeds: seeds,
		nonce: nonce,
		gen:   NewByteGenerator(seeds.Server, seeds.Client, nonce, 0),
	}
}

// Float returns the next float in [0,1).
func (s *Stream) Float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawn++
	return s.gen.NextFloat()
}

// Intn returns the next value in [0,n). n <= 0 yields 0.
func (s *Stream) Intn(n int) int {
	return Pick(s.Float(), n)
}

// Shuffle performs a Fisher-Yates shuffle driven by the stream.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, s.Intn(i+1))
	}
}

// Drawn reports how many floats have been consumed.
func (s *Stream) Drawn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawn
}

// Seeds returns the seeds the stream was opened with.
func (s *Stream) Seeds() Seeds {
	return s.seeds
}

// Nonce returns the stream nonce.
func (s *Stream) Nonce() uint64 {
	return s.nonce
}

// Pick maps f in [0,1) onto an index in [0,n).
func Pick(f float64, n int) int {
	if n <= 0 {
		return 0
	}
	i := int(math.Floor(f * float64(n)))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// RandomSeed returns 32 random bytes hex-encoded, for processes started
// without a configured server seed.
func RandomSeed() string {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("engine: reading random seed: %v", err))
	}
	return hex.EncodeToString(b[:])
}
