package handler

import (
	"net/http"

	"github.com/Temutjin2k/location-relay/pkg/logger"
	wrap "github.com/Temutjin2k/location-relay/pkg/logger/wrapper"
)

type StatsProvider interface {
	Stats() (shops, conns int)
}

type Health struct {
	serviceName string
	stats       StatsProvider
	log         logger.Logger
}

func NewHealth(serviceName string, stats StatsProvider, log logger.Logger) *Health {
	return &Health{
		serviceName: serviceName,
		stats:       stats,
		log:         log,
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Returns the health status of the relay with the number of shops and live connections
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /health [get]
func (a *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "health_check")

	shops, conns := a.stats.Stats()
	response := envelope{
		"status": "available",
		"system_info": map[string]string{
			"service-name": a.serviceName,
		},
		"relay": map[string]int{
			"shops":       shops,
			"connections": conns,
		},
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		a.log.Error(ctx, "healthcheck", err)
		return
	}
}
