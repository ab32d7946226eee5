package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	req := require.New(t)

	req.Equal(30*time.Second, ParseDuration("30s", time.Minute))
	req.Equal(time.Minute, ParseDuration("", time.Minute))
	req.Equal(time.Minute, ParseDuration("soon", time.Minute))
	req.Equal(time.Minute, ParseDuration("-5s", time.Minute))
}
