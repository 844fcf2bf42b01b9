// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/ManuGH/snippets/internal/config"
	"github.com/ManuGH/snippets/internal/telemetry"
)

type service struct {
	holder  *config.Holder
	version string
}

// ServiceInfo is the body of GET /<prefix>.
type ServiceInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Env     string `json:"env"`
}

func (s *service) handleInfo(w http.ResponseWriter, _ *http.Request) {
	app := s.holder.Current().Sections().App
	writeJSON(w, http.StatusOK, ServiceInfo{
		Name:    telemetry.ServiceName,
		Version: s.version,
		Env:     app.Env,
	})
}

// handleConfig serves the effective configuration with secrets masked.
// Production answers 404 so the surface does not exist there.
func (s *service) handleConfig(w http.ResponseWriter, _ *http.Request) {
	snap := s.holder.Current()
	if snap.Sections().App.IsProduction() {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, snap.Masked())
}
