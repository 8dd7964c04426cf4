package utils

import (
	"net/http"
	"strconv"

	"github.com/airenas/go-app/pkg/goapp"

	_ "net/http/pprof"
)

// RunPerfEndpoint exposes pprof when debug.port is configured.
func RunPerfEndpoint() {
	port := goapp.Config.GetInt("debug.port")
	if port > 0 {
		goapp.Log.Info().Msgf("Starting pprof http endpoint at [::]:%d", port)
		err := http.ListenAndServe(":"+strconv.Itoa(port), nil)
		if err != nil {
			goapp.Log.Error().Err(err).Msg("can't start pprof endpoint")
		}
	} else {
		goapp.Log.Info().Msg("no debug.port provided - skip pprof endpoint")
	}
}
