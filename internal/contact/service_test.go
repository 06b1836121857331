package contact_test

import (
	"context"
	"maps"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/client"
	"github.com/MrJamesThe3rd/upkeep/internal/contact"
)

// fakeRepo keeps committed state in memory. A transaction works on a copy that replaces the
// committed state on Commit.
type fakeRepo struct {
	clients map[uuid.UUID]bool
	people  map[uuid.UUID]contact.Person
	log     []*activity.Entry
}

func newFakeRepo(clients ...uuid.UUID) *fakeRepo {
	r := &fakeRepo{clients: map[uuid.UUID]bool{}, people: map[uuid.UUID]contact.Person{}}
	for _, c := range clients {
		r.clients[c] = true
	}

	return r
}

func (r *fakeRepo) ListByClient(_ context.Context, clientID uuid.UUID) ([]*contact.Person, error) {
	var out []*contact.Person

	for _, p := range r.people {
		if p.ClientID == clientID {
			out = append(out, &p)
		}
	}

	return out, nil
}

func (r *fakeRepo) Begin(context.Context) (contact.Tx, error) {
	return &fakeTx{repo: r, people: maps.Clone(r.people)}, nil
}

func (r *fakeRepo) primaries(clientID uuid.UUID) int {
	n := 0

	for _, p := range r.people {
		if p.ClientID == clientID && p.IsPrimary {
			n++
		}
	}

	return n
}

type fakeTx struct {
	repo   *fakeRepo
	people map[uuid.UUID]contact.Person
	log    []*activity.Entry
	locked bool
}

func (t *fakeTx) LockClient(_ context.Context, id uuid.UUID) error {
	if !t.repo.clients[id] {
		return client.ErrNotFound
	}

	t.locked = true

	return nil
}

func (t *fakeTx) Get(_ context.Context, id uuid.UUID) (*contact.Person, error) {
	p, ok := t.people[id]
	if !ok {
		return nil, contact.ErrNotFound
	}

	return &p, nil
}

func (t *fakeTx) ClearPrimary(_ context.Context, clientID, except uuid.UUID) error {
	if !t.locked {
		panic("ClearPrimary without client lock")
	}

	for id, p := range t.people {
		if p.ClientID == clientID && id != except {
			p.IsPrimary = false
			t.people[id] = p
		}
	}

	return nil
}

func (t *fakeTx) Insert(_ context.Context, p *contact.Person) error {
	t.people[p.ID] = *p
	return nil
}

func (t *fakeTx) Update(_ context.Context, p *contact.Person) error {
	t.people[p.ID] = *p
	return nil
}

func (t *fakeTx) Delete(_ context.Context, id uuid.UUID) error {
	delete(t.people, id)
	return nil
}

func (t *fakeTx) Record(_ context.Context, e *activity.Entry) error {
	t.log = append(t.log, e)
	return nil
}

func (t *fakeTx) Commit() error {
	t.repo.people = t.people
	t.repo.log = append(t.repo.log, t.log...)

	return nil
}

func (t *fakeTx) Rollback() error { return nil }

func staff() context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{Name: "Sam", Role: auth.RoleManager})
}

func TestService_PrimaryExclusivity(t *testing.T) {
	clientID := uuid.New()
	repo := newFakeRepo(clientID)
	svc := contact.NewService(repo)
	ctx := staff()

	first, err := svc.Create(ctx, clientID, contact.Params{Name: "Ana", IsPrimary: true})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.primaries(clientID))

	second, err := svc.Create(ctx, clientID, contact.Params{Name: "Ben", IsPrimary: true})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.primaries(clientID))
	assert.False(t, repo.people[first.ID].IsPrimary)
	assert.True(t, repo.people[second.ID].IsPrimary)

	// Promoting on edit demotes the current primary.
	_, err = svc.Update(ctx, first.ID, contact.Params{Name: "Ana", IsPrimary: true})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.primaries(clientID))
	assert.True(t, repo.people[first.ID].IsPrimary)
	assert.False(t, repo.people[second.ID].IsPrimary)

	// A non-primary contact leaves the current primary alone.
	_, err = svc.Create(ctx, clientID, contact.Params{Name: "Cy"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.primaries(clientID))

	assert.Len(t, repo.log, 4)
}

func TestService_PrimaryIsScopedToClient(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	repo := newFakeRepo(a, b)
	svc := contact.NewService(repo)

	_, err := svc.Create(staff(), a, contact.Params{Name: "Ana", IsPrimary: true})
	require.NoError(t, err)
	_, err = svc.Create(staff(), b, contact.Params{Name: "Bo", IsPrimary: true})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.primaries(a))
	assert.Equal(t, 1, repo.primaries(b))
}

func TestService_Create_Errors(t *testing.T) {
	clientID := uuid.New()

	type testCase struct {
		name    string
		ctx     context.Context
		client  uuid.UUID
		params  contact.Params
		wantErr error
	}

	tests := []testCase{
		{name: "UnknownClient", ctx: staff(), client: uuid.New(), params: contact.Params{Name: "X"}, wantErr: apperr.ErrNotFound},
		{name: "Anonymous", ctx: context.Background(), client: clientID, params: contact.Params{Name: "X"}, wantErr: auth.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo(clientID)

			_, err := contact.NewService(repo).Create(tt.ctx, tt.client, tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, repo.people)
		})
	}

	repo := newFakeRepo(clientID)
	_, err := contact.NewService(repo).Create(staff(), clientID, contact.Params{Email: "nope"})
	assert.True(t, apperr.IsValidation(err))
}

func TestService_Delete(t *testing.T) {
	clientID := uuid.New()
	repo := newFakeRepo(clientID)
	svc := contact.NewService(repo)

	p, err := svc.Create(staff(), clientID, contact.Params{Name: "Ana"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(staff(), p.ID), auth.ErrUnauthorized)

	admin := auth.WithPrincipal(context.Background(), auth.Principal{Role: auth.RoleAdmin})
	require.NoError(t, svc.Delete(admin, p.ID))
	assert.Empty(t, repo.people)

	assert.ErrorIs(t, svc.Delete(admin, p.ID), contact.ErrNotFound)
}
