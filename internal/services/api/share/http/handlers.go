// Package http provides the POST /share transport
package http

import (
	stdhttp "net/http"

	"sharerelay/internal/modkit/httpkit"
	"sharerelay/internal/services/api/share/domain"
	identhttp "sharerelay/internal/services/ident/http"
)

// maxBody bounds a share body; real ones are a few hundred bytes
const maxBody = 64 << 10

// Register mounts the share endpoint on the given router
func Register(r httpkit.Router, s domain.Submitter) {
	h := &handlers{svc: s}

	// clients add fields over time, unknown ones are ignored
	httpkit.PostRaw[domain.ShareIn](r, "/share", h.share, httpkit.JSONOptions{MaxBytes: maxBody})
}

type handlers struct{ svc domain.Submitter }

// swagger:route POST /share Share shareSubmit
// @Summary Submit a shared link
// @Description Classifies the link, persists it when an external id can be derived and notifies the account's event stream
// @Tags Share
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param payload body domain.ShareIn true "Share"
// @Success 200 {object} domain.ShareOut "ok"
// @Failure 400 {object} httpkit.Envelope "empty url or invalid kind"
// @Failure 401 {object} httpkit.Envelope "missing or invalid credential"
// @Failure 429 {object} httpkit.Envelope "rate limited"
// @Router /share [post]
func (h *handlers) share(r *stdhttp.Request, in domain.ShareIn) (any, error) {
	who, err := identhttp.FromRequest(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Submit(r.Context(), in, who)
}
