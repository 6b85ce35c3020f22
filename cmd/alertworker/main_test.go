package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/suPer8Hu/serene-backend/internal/email"
	"github.com/suPer8Hu/serene-backend/internal/store/rabbitmq"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAlertHandler_BadPayloadIsPermanent(t *testing.T) {
	h := &alertHandler{log: zap.NewNop()}
	assert.ErrorIs(t, h.Handle(context.Background(), []byte("not json")), rabbitmq.ErrPermanent)
	assert.ErrorIs(t, h.Handle(context.Background(), []byte(`{}`)), rabbitmq.ErrPermanent)
}

func TestAlertHandler_LogsWithoutSMTP(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := &alertHandler{smtp: email.SMTPConfig{}, to: "oncall@example.com", log: zap.New(core)}

	err := h.Handle(context.Background(), []byte(`{"id":"01A","user_id":"u","conversation_id":2,"intent":"suicide"}`))
	assert.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("safety alert").Len())
}
