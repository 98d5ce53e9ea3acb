package translator

import (
	"context"
	"errors"
	"testing"

	"github.com/Conceptual-Machines/bp3-agents-go/config"
	"github.com/Conceptual-Machines/bp3-agents-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgent_Translate(t *testing.T) {
	doc := document(block(models.ModeOrd, 1, rule(1, 1, lhs("Tala"), nt("dha"))))

	agent := NewAgent(&config.Config{StartSymbol: "Tala", MaxDur: 8})
	result, err := agent.Translate(context.Background(), doc, Resources{}, Options{SourceName: "-gr.tala"})
	require.NoError(t, err)

	assert.Contains(t, result.Code, "// Source: -gr.tala")
	assert.Contains(t, result.Code, `Pfindur(8, Pdef(\Tala)).play;`)
	require.Len(t, result.Terminals, 1)
	assert.Equal(t, "dha", result.Terminals[0].Name)
}

func TestAgent_OptionsOverrideConfig(t *testing.T) {
	doc := document(block(models.ModeOrd, 1,
		rule(1, 1, lhs("S"), note("do", 4)),
		rule(1, 2, lhs("Tala"), note("re", 4)),
	))

	agent := NewAgent(&config.Config{StartSymbol: "Tala"})
	result, err := agent.Translate(context.Background(), doc, Resources{}, Options{StartSymbol: "S"})
	require.NoError(t, err)
	assert.Contains(t, result.Code, `Pdef(\S).play;`)
}

func TestAgent_NilConfig(t *testing.T) {
	agent := NewAgent(nil)

	_, err := agent.Translate(context.Background(), &models.Document{}, Resources{}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidDocument))
	assert.Contains(t, err.Error(), "translation failed")
}
