// internal/service/message/message_service_test.go
package message

import (
	"context"
	"testing"

	"leadscout-service/internal/domain/lead"
	"leadscout-service/internal/domain/message"
	xerrors "leadscout-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMessageRepo struct {
	messages []*message.Message
	nextID   int64
}

func (f *fakeMessageRepo) Create(ctx context.Context, m *message.Message) error {
	f.nextID++
	m.ID = f.nextID
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeMessageRepo) FindByLead(ctx context.Context, leadID int64) ([]*message.Message, error) {
	var out []*message.Message
	for _, m := range f.messages {
		if m.LeadID == leadID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeLeadFinder struct {
	leads map[int64]*lead.Lead
}

func (f *fakeLeadFinder) FindByID(ctx context.Context, id int64) (*lead.Lead, error) {
	l, ok := f.leads[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return l, nil
}

func newTestService() (*Service, *fakeMessageRepo) {
	repo := &fakeMessageRepo{}
	finder := &fakeLeadFinder{leads: map[int64]*lead.Lead{
		10: {ID: 10, UserID: 7},
	}}
	return NewService(repo, finder, zap.NewNop()), repo
}

func TestSendAndThread(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	m, err := svc.Send(ctx, 7, &message.SendMessageRequest{
		LeadID:  10,
		Subject: "Opportunity",
		Body:    "Hi there",
	})
	require.NoError(t, err)
	assert.NotZero(t, m.ID)

	_, err = svc.Send(ctx, 7, &message.SendMessageRequest{LeadID: 10, Subject: "Follow up", Body: "Ping"})
	require.NoError(t, err)

	thread, err := svc.Thread(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "Opportunity", thread[0].Subject)
}

func TestSendToForeignLeadForbidden(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.Send(ctx, 99, &message.SendMessageRequest{LeadID: 10, Subject: "s", Body: "b"})
	require.ErrorIs(t, err, xerrors.ErrForbidden)
	assert.Empty(t, repo.messages)

	_, err = svc.Thread(ctx, 99, 10)
	require.ErrorIs(t, err, xerrors.ErrForbidden)
}

func TestSendToUnknownLead(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Send(context.Background(), 7, &message.SendMessageRequest{LeadID: 404, Subject: "s", Body: "b"})
	require.ErrorIs(t, err, xerrors.ErrNotFound)
}
