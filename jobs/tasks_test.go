package jobs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/priceopt/priceopt/testing"
)

func TestNewVerificationEmailTask(t *testing.T) {
	task, err := NewVerificationEmailTask(VerificationEmailPayload{
		To: "alice@example.com", Username: "Alice", Token: "tok-123",
	})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeVerificationEmail, task.Type())

	var payload VerificationEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "alice@example.com", payload.To)
	assert.Equal(t, "Alice", payload.Username)
	assert.Equal(t, "tok-123", payload.Token)
}

func TestVerificationLinkEscapesToken(t *testing.T) {
	link := VerificationLink("http://localhost:5173", "a+b/c==")
	assert.Equal(t, "http://localhost:5173/verify-email?token=a%2Bb%2Fc%3D%3D", link)
}

func TestVerificationEmailBody(t *testing.T) {
	body := VerificationEmailBody("Alice", "http://localhost:5173/verify-email?token=x")
	assert.Contains(t, body, "Hi Alice,")
	assert.Contains(t, body, "http://localhost:5173/verify-email?token=x")
	assert.Contains(t, body, "expires in 24 hours")
}

func TestVerificationEmailHandlerSkipsBadPayload(t *testing.T) {
	handler := NewVerificationEmailHandler(Mailer{}, "http://localhost:5173", nil)
	task := asynq.NewTask(TaskTypeVerificationEmail, []byte("not json"))
	err := handler(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestClientEnqueuesVerificationEmail(t *testing.T) {
	mr := miniredis.RunT(t)
	opts := asynq.RedisClientOpt{Addr: mr.Addr()}

	client, err := NewClient(opts)
	require.NoError(t, err)
	defer client.Close()

	err = client.SendVerificationEmail(context.Background(), "alice@example.com", "Alice", "tok-123")
	require.NoError(t, err)

	inspector := asynq.NewInspector(opts)
	defer inspector.Close()

	pending, err := inspector.ListPendingTasks(QueueDefault)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, TaskTypeVerificationEmail, pending[0].Type)

	var payload VerificationEmailPayload
	require.NoError(t, json.Unmarshal(pending[0].Payload, &payload))
	assert.Equal(t, "alice@example.com", payload.To)
	assert.Equal(t, "tok-123", payload.Token)
}
