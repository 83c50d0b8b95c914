package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/mute-switch/pkg/common"
)

func TestNewControl_endpoint(t *testing.T) {
	conf := NewConfiguration()

	actual, err := NewControl(&conf)
	require.NoError(t, err)

	instance, ok := actual.(*Endpoint)
	require.True(t, ok)
	assert.Equal(t, DefaultPollInterval, instance.PollInterval)
}

func TestNewControl_application(t *testing.T) {
	conf := NewConfiguration()
	conf.Type = TypeApplication
	conf.Application = common.MustNewRegexp("^obs")

	actual, err := NewControl(&conf)
	require.NoError(t, err)

	instance, ok := actual.(*Application)
	require.True(t, ok)
	assert.Equal(t, "^obs", instance.Name.String())
}

func TestNewControl_applicationRequiresPattern(t *testing.T) {
	conf := NewConfiguration()
	conf.Type = TypeApplication

	_, err := NewControl(&conf)
	require.ErrorContains(t, err, "--control.application")
}
