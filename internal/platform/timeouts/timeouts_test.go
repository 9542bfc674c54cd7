package timeouts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeoutsArePositive(t *testing.T) {
	for name, d := range map[string]time.Duration{
		"PoolFill":          PoolFill,
		"ReadHeader":        ReadHeader,
		"Shutdown":          Shutdown,
		"TelemetryShutdown": TelemetryShutdown,
	} {
		assert.True(t, d > 0, name)
	}
}
