package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil evaluation service returns error", func(t *testing.T) {
		ports := &Ports{Retrieval: &mockRetrievalService{}}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingEvaluationService)
	})

	t.Run("nil retrieval service returns error", func(t *testing.T) {
		ports := &Ports{Evaluation: &mockEvaluationService{}}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingRetrievalService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Evaluation: &mockEvaluationService{},
			Retrieval:  &mockRetrievalService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("empty ports return error", func(t *testing.T) {
		ports := &Ports{}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingEvaluationService)
	})

	t.Run("evaluation and retrieval are sufficient", func(t *testing.T) {
		ports := &Ports{
			Evaluation: &mockEvaluationService{},
			Retrieval:  &mockRetrievalService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Evaluation: &mockEvaluationService{},
			Retrieval:  &mockRetrievalService{},
			Ingest:     &mockIngestService{},
			Literature: &mockLiteratureService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})
}
