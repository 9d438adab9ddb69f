package utils

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaWriter(t *testing.T) {
	_, err := NewKafkaWriter(nil, "calendar.events")
	assert.Error(t, err)

	_, err = NewKafkaWriter([]string{"localhost:9092"}, "")
	assert.Error(t, err)

	w, err := NewKafkaWriter([]string{"localhost:9092"}, "calendar.events")
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, "calendar.events", w.Topic)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}

func TestInitFirebaseRequiresProject(t *testing.T) {
	_, err := InitFirebase(t.Context(), "", "")
	assert.Error(t, err)

	_, err = InitFirebase(t.Context(), "demo", "/does/not/exist.json")
	assert.ErrorContains(t, err, "not found")
}
