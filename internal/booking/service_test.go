package booking_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/booking"
	"github.com/MrJamesThe3rd/upkeep/internal/lead"
)

func staffCtx() context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{UserID: uuid.New(), Name: "Morgan", Role: auth.RoleManager})
}

func TestService_Submit_AnonymousIsForcedToWebsiteBooking(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := booking.NewMockRepository(ctrl)
	tx := booking.NewMockTx(ctrl)

	var (
		insertedLead *lead.Lead
		entries      []*activity.Entry
	)

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().InsertLead(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(func(_ context.Context, l *lead.Lead) error {
		insertedLead = l
		return nil
	})
	tx.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *booking.Request) error {
		assert.Equal(t, booking.StatusNew, r.Status)
		assert.Equal(t, booking.WebsiteSource, r.Source)
		return nil
	})
	tx.EXPECT().Record(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(func(_ context.Context, e *activity.Entry) error {
		entries = append(entries, e)
		return nil
	})
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil)

	res, err := booking.NewService(repo).Submit(context.Background(), booking.SubmitParams{
		Name:    "Dana Ruiz",
		Email:   "dana@example.com",
		Service: "Gutter cleaning",
		Status:  booking.StatusConfirmed,
		Source:  "partner-portal",
	})
	require.NoError(t, err)

	require.NotNil(t, insertedLead)
	assert.True(t, res.LeadCreated)
	assert.Equal(t, insertedLead.ID, res.LeadID)
	assert.Equal(t, &insertedLead.ID, res.Booking.LeadID)
	assert.Equal(t, lead.StatusNew, insertedLead.Status)
	assert.Equal(t, booking.WebsiteSource, insertedLead.Source)
	assert.Equal(t, "Gutter cleaning", insertedLead.Service)
	assert.Equal(t, booking.StatusNew, res.Booking.Status)

	require.Len(t, entries, 2)
	assert.Equal(t, activity.EntityLead, entries[0].EntityType)
	assert.Equal(t, activity.EntityBooking, entries[1].EntityType)
	assert.Equal(t, "anonymous", entries[1].ActorName)
}

func TestService_Submit(t *testing.T) {
	leadID := uuid.New()
	clientID := uuid.New()

	type testCase struct {
		name      string
		ctx       context.Context
		params    booking.SubmitParams
		setupMock func(repo *booking.MockRepository, tx *booking.MockTx)
		wantErr   error
		check     func(t *testing.T, res *booking.SubmitResult)
	}

	tests := []testCase{
		{
			name: "StaffKeepsStatusAndSource",
			ctx:  staffCtx(),
			params: booking.SubmitParams{
				Name: "Dana", Phone: "555-0100", Service: "Pressure wash",
				Status: booking.StatusConfirmed, Source: "phone",
			},
			setupMock: func(repo *booking.MockRepository, tx *booking.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().InsertLead(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, l *lead.Lead) error {
					assert.Equal(t, "phone", l.Source)
					return nil
				})
				tx.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().Record(gomock.Any(), gomock.Any()).Times(2).Return(nil)
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil)
			},
			check: func(t *testing.T, res *booking.SubmitResult) {
				assert.Equal(t, booking.StatusConfirmed, res.Booking.Status)
				assert.Equal(t, "phone", res.Booking.Source)
			},
		},
		{
			name:   "ExistingLeadIsLinked",
			ctx:    context.Background(),
			params: booking.SubmitParams{Name: "Dana", Email: "dana@example.com", Service: "Windows", ConvertedLeadID: &leadID},
			setupMock: func(repo *booking.MockRepository, tx *booking.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().LeadExists(gomock.Any(), leadID).Return(nil)
				tx.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().Record(gomock.Any(), gomock.Any()).Times(1).Return(nil)
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil)
			},
			check: func(t *testing.T, res *booking.SubmitResult) {
				assert.False(t, res.LeadCreated)
				assert.Equal(t, leadID, res.LeadID)
			},
		},
		{
			name:   "AnonymousCannotAttachClient",
			ctx:    context.Background(),
			params: booking.SubmitParams{Name: "Dana", Email: "dana@example.com", Service: "Windows", ConvertedLeadID: &leadID, ClientID: &clientID},
			setupMock: func(repo *booking.MockRepository, tx *booking.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().LeadExists(gomock.Any(), leadID).Return(nil)
				tx.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *booking.Request) error {
					assert.Nil(t, r.ClientID)
					return nil
				})
				tx.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil)
			},
			check: func(t *testing.T, res *booking.SubmitResult) {
				assert.Nil(t, res.Booking.ClientID)
				assert.Equal(t, leadID, res.LeadID)
			},
		},
		{
			name:   "StaffAttachesClient",
			ctx:    staffCtx(),
			params: booking.SubmitParams{Name: "Dana", Email: "dana@example.com", Service: "Windows", ConvertedLeadID: &leadID, ClientID: &clientID},
			setupMock: func(repo *booking.MockRepository, tx *booking.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().ClientExists(gomock.Any(), clientID).Return(nil)
				tx.EXPECT().LeadExists(gomock.Any(), leadID).Return(nil)
				tx.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil)
			},
			check: func(t *testing.T, res *booking.SubmitResult) {
				assert.Equal(t, &clientID, res.Booking.ClientID)
			},
		},
		{
			name:   "UnknownLead",
			ctx:    context.Background(),
			params: booking.SubmitParams{Name: "Dana", Email: "dana@example.com", Service: "Windows", ConvertedLeadID: &leadID},
			setupMock: func(repo *booking.MockRepository, tx *booking.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().LeadExists(gomock.Any(), leadID).Return(lead.ErrNotFound)
				tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: apperr.ErrNotFound,
		},
		{
			name:    "NoWayToReachTheCustomer",
			ctx:     context.Background(),
			params:  booking.SubmitParams{Name: "Dana", Service: "Windows"},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := booking.NewMockRepository(ctrl)
			tx := booking.NewMockTx(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, tx)
			}

			res, err := booking.NewService(repo).Submit(tt.ctx, tt.params)

			if tt.setupMock == nil {
				var ve *apperr.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, []string{"phone: is required when email is empty"}, ve.Violations)

				return
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.check(t, res)
		})
	}
}

func TestService_UpdateStatus(t *testing.T) {
	id := uuid.New()

	t.Run("ClientsCannotManageBookings", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		ctx := auth.WithPrincipal(context.Background(), auth.Principal{UserID: uuid.New(), Role: auth.RoleClient})

		_, err := booking.NewService(booking.NewMockRepository(ctrl)).UpdateStatus(ctx, id, booking.StatusReviewed)
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("ConfirmedIsTerminal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := booking.NewMockRepository(ctrl)
		tx := booking.NewMockTx(ctrl)

		repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
		tx.EXPECT().Lock(gomock.Any(), id).Return(&booking.Request{ID: id, Status: booking.StatusConfirmed}, nil)
		tx.EXPECT().Rollback().Return(nil)

		_, err := booking.NewService(repo).UpdateStatus(staffCtx(), id, booking.StatusNew)
		assert.ErrorIs(t, err, booking.ErrInvalidTransition)
	})

	t.Run("Reviewed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := booking.NewMockRepository(ctrl)
		tx := booking.NewMockTx(ctrl)

		repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
		tx.EXPECT().Lock(gomock.Any(), id).Return(&booking.Request{ID: id, Name: "Dana", Status: booking.StatusNew}, nil)
		tx.EXPECT().UpdateStatus(gomock.Any(), id, booking.StatusReviewed).Return(nil)
		tx.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
		tx.EXPECT().Commit().Return(nil)
		tx.EXPECT().Rollback().Return(nil)

		got, err := booking.NewService(repo).UpdateStatus(staffCtx(), id, booking.StatusReviewed)
		require.NoError(t, err)
		assert.Equal(t, booking.StatusReviewed, got.Status)
	})
}
