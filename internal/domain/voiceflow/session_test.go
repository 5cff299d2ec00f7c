//go:build unit

package voiceflow_test

import (
	"testing"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/voiceflow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ttl = 5 * time.Minute

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func ptrF(v float64) *float64 { return &v }
func ptrS(v string) *string   { return &v }

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		state  voiceflow.State
		intent voiceflow.Intent
		next   voiceflow.State
		errIs  error
	}{
		{voiceflow.StateIdle, voiceflow.IntentStartWorkflow, voiceflow.StatePhotoCapture, nil},
		{voiceflow.StatePhotoCapture, voiceflow.IntentPhotoCaptured, voiceflow.StatePhotoConfirmation, nil},
		{voiceflow.StatePhotoConfirmation, voiceflow.IntentConfirm, voiceflow.StateQuantityInput, nil},
		{voiceflow.StatePhotoConfirmation, voiceflow.IntentRetake, voiceflow.StatePhotoCapture, nil},
		{voiceflow.StateQuantityInput, voiceflow.IntentQuantityGiven, voiceflow.StateQuantityConfirmation, nil},
		{voiceflow.StateQuantityConfirmation, voiceflow.IntentConfirm, voiceflow.StatePriceInput, nil},
		{voiceflow.StateQuantityConfirmation, voiceflow.IntentQuantityGiven, voiceflow.StateQuantityConfirmation, nil},
		{voiceflow.StatePriceInput, voiceflow.IntentPriceGiven, voiceflow.StatePriceConfirmation, nil},
		{voiceflow.StatePriceConfirmation, voiceflow.IntentConfirm, voiceflow.StateCompletion, nil},
		{voiceflow.StatePriceConfirmation, voiceflow.IntentPriceGiven, voiceflow.StatePriceConfirmation, nil},
		{voiceflow.StateIdle, voiceflow.IntentConfirm, "", voiceflow.ErrNoTransition},
		{voiceflow.StatePhotoCapture, voiceflow.IntentPriceGiven, "", voiceflow.ErrNoTransition},
		{voiceflow.StateCompletion, voiceflow.IntentConfirm, "", voiceflow.ErrNoTransition},
	}

	for _, tc := range cases {
		t.Run(string(tc.state)+"_"+string(tc.intent), func(t *testing.T) {
			next, err := voiceflow.Next(tc.state, tc.intent)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.next, next)
		})
	}
}

func TestAllowedIntents(t *testing.T) {
	t.Run("cancel is always a candidate", func(t *testing.T) {
		for _, state := range []voiceflow.State{
			voiceflow.StateIdle, voiceflow.StatePhotoCapture, voiceflow.StateCompletion,
		} {
			assert.Contains(t, voiceflow.AllowedIntents(state), voiceflow.IntentCancel)
		}
	})

	t.Run("confirmation offers confirm and overwrite", func(t *testing.T) {
		got := voiceflow.AllowedIntents(voiceflow.StatePriceConfirmation)
		assert.ElementsMatch(t, []voiceflow.Intent{
			voiceflow.IntentConfirm, voiceflow.IntentPriceGiven, voiceflow.IntentCancel,
		}, got)
	})
}

func TestSessionAdvance(t *testing.T) {
	t.Run("full happy path refreshes ttl per step", func(t *testing.T) {
		s := voiceflow.NewSession(uuid.New(), lang.Hindi, ttl, now)
		assert.Equal(t, voiceflow.StatePhotoCapture, s.State)
		assert.Equal(t, now.Add(ttl), s.ExpiresAt)

		step := now
		advance := func(intent voiceflow.Intent, in voiceflow.TransitionInput) {
			step = step.Add(30 * time.Second)
			require.NoError(t, s.Advance(intent, in, ttl, step))
			assert.Equal(t, step.Add(ttl), s.ExpiresAt)
		}

		advance(voiceflow.IntentPhotoCaptured, voiceflow.TransitionInput{PhotoRef: ptrS("photos/p1.jpg")})
		advance(voiceflow.IntentConfirm, voiceflow.TransitionInput{})
		advance(voiceflow.IntentQuantityGiven, voiceflow.TransitionInput{Quantity: ptrF(2), Unit: ptrS("kg")})
		advance(voiceflow.IntentConfirm, voiceflow.TransitionInput{})
		advance(voiceflow.IntentPriceGiven, voiceflow.TransitionInput{Price: ptrF(450)})
		advance(voiceflow.IntentConfirm, voiceflow.TransitionInput{})

		assert.Equal(t, voiceflow.StateCompletion, s.State)
		assert.Equal(t, "photos/p1.jpg", *s.Data.PhotoRef)
		assert.Equal(t, 2.0, *s.Data.Quantity)
		assert.Equal(t, "kg", *s.Data.Unit)
		assert.Equal(t, 450.0, *s.Data.Price)
	})

	t.Run("retake discards the photo ref", func(t *testing.T) {
		s := voiceflow.NewSession(uuid.New(), lang.Hindi, ttl, now)
		require.NoError(t, s.Advance(voiceflow.IntentPhotoCaptured, voiceflow.TransitionInput{PhotoRef: ptrS("photos/p1.jpg")}, ttl, now))
		require.NoError(t, s.Advance(voiceflow.IntentRetake, voiceflow.TransitionInput{}, ttl, now))

		assert.Equal(t, voiceflow.StatePhotoCapture, s.State)
		assert.Nil(t, s.Data.PhotoRef)
	})

	t.Run("confirmation overwrite replaces quantity", func(t *testing.T) {
		s := voiceflow.NewSession(uuid.New(), lang.Hindi, ttl, now)
		require.NoError(t, s.Advance(voiceflow.IntentPhotoCaptured, voiceflow.TransitionInput{PhotoRef: ptrS("p")}, ttl, now))
		require.NoError(t, s.Advance(voiceflow.IntentConfirm, voiceflow.TransitionInput{}, ttl, now))
		require.NoError(t, s.Advance(voiceflow.IntentQuantityGiven, voiceflow.TransitionInput{Quantity: ptrF(2), Unit: ptrS("kg")}, ttl, now))
		require.NoError(t, s.Advance(voiceflow.IntentQuantityGiven, voiceflow.TransitionInput{Quantity: ptrF(3), Unit: ptrS("kg")}, ttl, now))

		assert.Equal(t, voiceflow.StateQuantityConfirmation, s.State)
		assert.Equal(t, 3.0, *s.Data.Quantity)
	})

	t.Run("entity required for data transitions", func(t *testing.T) {
		s := voiceflow.NewSession(uuid.New(), lang.Hindi, ttl, now)
		require.NoError(t, s.Advance(voiceflow.IntentPhotoCaptured, voiceflow.TransitionInput{PhotoRef: ptrS("p")}, ttl, now))
		require.NoError(t, s.Advance(voiceflow.IntentConfirm, voiceflow.TransitionInput{}, ttl, now))

		err := s.Advance(voiceflow.IntentQuantityGiven, voiceflow.TransitionInput{}, ttl, now)
		assert.ErrorIs(t, err, voiceflow.ErrMissingQuantity)
		assert.Equal(t, voiceflow.StateQuantityInput, s.State)
	})

	t.Run("completed session rejects further intents", func(t *testing.T) {
		s := voiceflow.NewSession(uuid.New(), lang.Hindi, ttl, now)
		s.State = voiceflow.StateCompletion

		err := s.Advance(voiceflow.IntentConfirm, voiceflow.TransitionInput{}, ttl, now)
		assert.ErrorIs(t, err, voiceflow.ErrSessionCompleted)
	})

	t.Run("expiry check", func(t *testing.T) {
		s := voiceflow.NewSession(uuid.New(), lang.Hindi, ttl, now)
		assert.False(t, s.HasExpired(now.Add(ttl)))
		assert.True(t, s.HasExpired(now.Add(ttl+time.Second)))
	})
}
