package gemini

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientOptions(t *testing.T) {
	c := &Client{
		model:   DefaultModel,
		timeout: DefaultTimeout,
	}

	WithModel("gemini-2.5-pro")(c)
	WithRateLimit(30)(c)
	WithTimeout(5 * time.Second)(c)

	assert.Equal(t, "gemini-2.5-pro", c.model)
	assert.NotNil(t, c.limiter)
	assert.Equal(t, 5*time.Second, c.timeout)
}

func TestClientOptionsIgnoreZeroValues(t *testing.T) {
	c := &Client{
		model:   DefaultModel,
		timeout: DefaultTimeout,
	}

	WithModel("")(c)
	WithRateLimit(0)(c)
	WithTimeout(0)(c)

	assert.Equal(t, DefaultModel, c.model)
	assert.Equal(t, DefaultTimeout, c.timeout)
}
