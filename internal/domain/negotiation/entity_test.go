//go:build unit

package negotiation_test

import (
	"testing"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/negotiation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestRoomLifecycle(t *testing.T) {
	vendorID := uuid.New()

	t.Run("new room waits for a customer", func(t *testing.T) {
		r := negotiation.NewRoom(uuid.New(), vendorID, lang.Hindi, now)

		assert.Equal(t, negotiation.RoomWaiting, r.Status())
		assert.Nil(t, r.CustomerID())
		assert.True(t, r.CanAppend())
	})

	t.Run("customer attaches at most once", func(t *testing.T) {
		r := negotiation.NewRoom(uuid.New(), vendorID, lang.Hindi, now)
		customerID := uuid.New()

		require.NoError(t, r.AttachCustomer(customerID, lang.English, now))
		assert.Equal(t, negotiation.RoomActive, r.Status())

		err := r.AttachCustomer(uuid.New(), lang.Tamil, now)
		assert.ErrorIs(t, err, negotiation.ErrCustomerAlreadySet)
		assert.Equal(t, customerID, *r.CustomerID())
		assert.Equal(t, lang.English, *r.CustomerLanguage())
	})

	t.Run("completion is idempotent terminal", func(t *testing.T) {
		r := negotiation.NewRoom(uuid.New(), vendorID, lang.Hindi, now)
		require.NoError(t, r.AttachCustomer(uuid.New(), lang.English, now))

		require.NoError(t, r.Complete("₹450 for 2kg", now))
		assert.True(t, r.AgreementReached())
		assert.Equal(t, "₹450 for 2kg", *r.AgreementDetails())
		assert.False(t, r.CanAppend())

		assert.ErrorIs(t, r.Complete("other", now), negotiation.ErrAlreadyCompleted)
		assert.Equal(t, "₹450 for 2kg", *r.AgreementDetails())
	})

	t.Run("abandoned room cannot complete", func(t *testing.T) {
		r := negotiation.NewRoom(uuid.New(), vendorID, lang.Hindi, now)
		require.NoError(t, r.Abandon(now))

		assert.ErrorIs(t, r.Complete("x", now), negotiation.ErrRoomClosed)
		assert.ErrorIs(t, r.Abandon(now), negotiation.ErrRoomClosed)
	})
}

func TestRoomMembership(t *testing.T) {
	vendorID := uuid.New()
	customerID := uuid.New()
	r := negotiation.NewRoom(uuid.New(), vendorID, lang.Hindi, now)
	require.NoError(t, r.AttachCustomer(customerID, lang.English, now))

	t.Run("participants", func(t *testing.T) {
		assert.True(t, r.IsParticipant(vendorID))
		assert.True(t, r.IsParticipant(customerID))
		assert.False(t, r.IsParticipant(uuid.New()))
	})

	t.Run("sender type derivation", func(t *testing.T) {
		st, ok := r.SenderTypeOf(vendorID)
		require.True(t, ok)
		assert.Equal(t, negotiation.SenderVendor, st)

		st, ok = r.SenderTypeOf(customerID)
		require.True(t, ok)
		assert.Equal(t, negotiation.SenderCustomer, st)

		_, ok = r.SenderTypeOf(uuid.New())
		assert.False(t, ok)
	})

	t.Run("language pair per side", func(t *testing.T) {
		from, to := r.LanguagePair(negotiation.SenderVendor)
		assert.Equal(t, lang.Hindi, from)
		assert.Equal(t, lang.English, to)

		from, to = r.LanguagePair(negotiation.SenderCustomer)
		assert.Equal(t, lang.English, from)
		assert.Equal(t, lang.Hindi, to)
	})

	t.Run("target falls back to vendor language before join", func(t *testing.T) {
		waiting := negotiation.NewRoom(uuid.New(), vendorID, lang.Hindi, now)
		from, to := waiting.LanguagePair(negotiation.SenderVendor)
		assert.Equal(t, lang.Hindi, from)
		assert.Equal(t, lang.Hindi, to)
	})
}

func TestMessage(t *testing.T) {
	sessionID := uuid.New()
	senderID := uuid.New()

	t.Run("pending when languages differ", func(t *testing.T) {
		m, err := negotiation.NewMessage(sessionID, senderID, negotiation.SenderVendor,
			"₹500", lang.Hindi, lang.English, negotiation.MessageText, nil, now)
		require.NoError(t, err)

		assert.NotEmpty(t, m.ID)
		assert.Equal(t, "₹500", m.Content)
		assert.Equal(t, m.OriginalContent, m.Content)
		assert.Equal(t, negotiation.TranslationPending, m.TranslationStatus)
	})

	t.Run("not required when languages match", func(t *testing.T) {
		m, err := negotiation.NewMessage(sessionID, senderID, negotiation.SenderVendor,
			"hello", lang.English, lang.English, negotiation.MessageText, nil, now)
		require.NoError(t, err)
		assert.Equal(t, negotiation.TranslationNotRequired, m.TranslationStatus)
	})

	t.Run("ids order by append time", func(t *testing.T) {
		m1, err := negotiation.NewMessage(sessionID, senderID, negotiation.SenderVendor,
			"a", lang.Hindi, lang.English, negotiation.MessageText, nil, now)
		require.NoError(t, err)
		m2, err := negotiation.NewMessage(sessionID, senderID, negotiation.SenderVendor,
			"b", lang.Hindi, lang.English, negotiation.MessageText, nil, now.Add(time.Second))
		require.NoError(t, err)

		assert.Less(t, m1.ID, m2.ID)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := negotiation.NewMessage(sessionID, senderID, negotiation.SenderVendor,
			"", lang.Hindi, lang.English, negotiation.MessageText, nil, now)
		assert.ErrorIs(t, err, negotiation.ErrEmptyContent)

		_, err = negotiation.NewMessage(sessionID, senderID, "BOT",
			"x", lang.Hindi, lang.English, negotiation.MessageText, nil, now)
		assert.ErrorIs(t, err, negotiation.ErrInvalidSender)

		_, err = negotiation.NewMessage(sessionID, senderID, negotiation.SenderVendor,
			"x", lang.Hindi, lang.English, "VIDEO", nil, now)
		assert.ErrorIs(t, err, negotiation.ErrInvalidMsgType)
	})
}

func TestTranslationUpgrade(t *testing.T) {
	m, err := negotiation.NewMessage(uuid.New(), uuid.New(), negotiation.SenderVendor,
		"₹500", lang.Hindi, lang.English, negotiation.MessageText, nil, now)
	require.NoError(t, err)

	t.Run("upgrade exactly once", func(t *testing.T) {
		require.NoError(t, m.ApplyTranslation("500 rupees"))
		assert.Equal(t, "500 rupees", m.Content)
		assert.Equal(t, "₹500", m.OriginalContent)
		assert.Equal(t, negotiation.TranslationCompleted, m.TranslationStatus)

		assert.ErrorIs(t, m.ApplyTranslation("again"), negotiation.ErrUpgradeNotPending)
		assert.ErrorIs(t, m.FailTranslation(), negotiation.ErrUpgradeNotPending)
	})

	t.Run("failure keeps original visible", func(t *testing.T) {
		m2, err := negotiation.NewMessage(uuid.New(), uuid.New(), negotiation.SenderVendor,
			"₹500", lang.Hindi, lang.English, negotiation.MessageText, nil, now)
		require.NoError(t, err)

		require.NoError(t, m2.FailTranslation())
		assert.Equal(t, "₹500", m2.Content)
		assert.Equal(t, negotiation.TranslationFailed, m2.TranslationStatus)
	})
}
