package bindings

import (
	"context"
	"time"

	"github.com/asobiba/minigames/internal/scan"
)

const scanTimeout = 30 * time.Second

// ScanNonces replays a nonce range for the verification panel. Requests
// without a timeout are capped at 30 seconds.
func (a *App) ScanNonces(req scan.Request) (*scan.Result, error) {
	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if req.TimeoutMs <= 0 {
		req.TimeoutMs = int(scanTimeout / time.Millisecond)
	}
	res, err := scan.NewScanner().Scan(ctx, req)
	if err != nil {
		a.logger.Printf("scan_failed game=%s err=%v", req.Game, err)
		return nil, err
	}
	a.logger.Printf("scan_done game=%s evaluated=%d hits=%d", req.Game, res.Summary.TotalEvaluated, res.Summary.HitsFound)
	return res, nil
}
