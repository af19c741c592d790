package registry

import (
	"testing"

	"github.com/Tomas-vilte/sonar-funnel/internal/config"
	appErrors "github.com/Tomas-vilte/sonar-funnel/internal/errors"
	"github.com/Tomas-vilte/sonar-funnel/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

type mockCommandFactory struct {
	name string
}

func (m *mockCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{Name: m.name}
}

func newTestRegistry(t *testing.T) *Registry {
	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)
	return NewRegistry(&config.Config{}, translations)
}

func TestRegistry_Register(t *testing.T) {
	t.Run("should register new factory successfully", func(t *testing.T) {
		registry := newTestRegistry(t)

		// act
		err := registry.Register("triage", &mockCommandFactory{name: "triage"})

		// assert
		assert.NoError(t, err)
		assert.Len(t, registry.factories, 1)
		assert.Contains(t, registry.factories, "triage")
	})

	t.Run("should fail on duplicated name", func(t *testing.T) {
		registry := newTestRegistry(t)
		require.NoError(t, registry.Register("triage", &mockCommandFactory{name: "triage"}))

		err := registry.Register("triage", &mockCommandFactory{name: "triage"})

		assert.ErrorIs(t, err, appErrors.ErrFactoryRegistered)
	})
}

func TestRegistry_CreateCommands(t *testing.T) {
	registry := newTestRegistry(t)
	require.NoError(t, registry.Register("version", &mockCommandFactory{name: "version"}))
	require.NoError(t, registry.Register("triage", &mockCommandFactory{name: "triage"}))

	commands := registry.CreateCommands()

	require.Len(t, commands, 2)
	assert.Equal(t, "triage", commands[0].Name)
	assert.Equal(t, "version", commands[1].Name)
}
