package capture

import (
	"context"
	"testing"
	"time"

	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeolocation struct {
	pos *Position
	err error
}

func (f *fakeGeolocation) CurrentPosition(ctx context.Context) (*Position, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pos, nil
}

func completeSession(requireFacade bool) *Session {
	s := NewSession(requireFacade)
	s.SetMeterValue(120)
	s.AttachPhoto(SlotMeter, &Photo{Data: []byte("meter"), MimeType: "image/jpeg"})
	if requireFacade {
		s.AttachPhoto(SlotFacade, &Photo{Data: []byte("facade"), MimeType: "image/jpeg"})
	}
	_ = s.SetLocationManually("-0.18", "-78.47")
	return s
}

func TestValidate(t *testing.T) {
	t.Run("empty session is invalid with all reasons", func(t *testing.T) {
		result := NewSession(true).Validate()

		assert.False(t, result.Valid)
		assert.Len(t, result.Reasons, 3)
	})

	t.Run("complete session is valid", func(t *testing.T) {
		result := completeSession(true).Validate()

		assert.True(t, result.Valid)
		assert.Empty(t, result.Reasons)
	})

	t.Run("negative meter value is rejected at validation", func(t *testing.T) {
		s := completeSession(true)
		s.SetMeterValue(-1)

		result := s.Validate()
		assert.False(t, result.Valid)
		assert.Contains(t, result.Reasons, "meter value must be non-negative")
	})

	t.Run("zero meter value is valid", func(t *testing.T) {
		s := completeSession(true)
		s.SetMeterValue(0)

		assert.True(t, s.Validate().Valid)
	})

	t.Run("missing meter photo is invalid", func(t *testing.T) {
		s := completeSession(true)
		s.ClearPhoto(SlotMeter)

		result := s.Validate()
		assert.False(t, result.Valid)
		assert.Contains(t, result.Reasons, "meter photo is required")
	})

	t.Run("facade photo optional in one-photo variant", func(t *testing.T) {
		s := completeSession(false)
		s.ClearPhoto(SlotFacade)

		assert.True(t, s.Validate().Valid)
	})

	t.Run("missing location is invalid", func(t *testing.T) {
		s := NewSession(false)
		s.SetMeterValue(10)
		s.AttachPhoto(SlotMeter, &Photo{Data: []byte("x"), MimeType: "image/jpeg"})

		result := s.Validate()
		assert.False(t, result.Valid)
		assert.Contains(t, result.Reasons, "location is required")
	})
}

func TestSetLocationManually(t *testing.T) {
	t.Run("parseable coordinates are stored", func(t *testing.T) {
		s := NewSession(true)

		err := s.SetLocationManually("-0.18", "-78.47")
		require.NoError(t, err)
		require.NotNil(t, s.Location())
		assert.Equal(t, -0.18, s.Location().Latitude)
		assert.Equal(t, -78.47, s.Location().Longitude)
	})

	t.Run("non-numeric latitude leaves location unchanged", func(t *testing.T) {
		s := NewSession(true)
		require.NoError(t, s.SetLocationManually("1", "2"))

		err := s.SetLocationManually("abc", "1")
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
		assert.Equal(t, 1.0, s.Location().Latitude)
		assert.Equal(t, 2.0, s.Location().Longitude)
	})

	t.Run("manual entry clears manual mode flag", func(t *testing.T) {
		s := NewSession(true)
		s.ManualLocationMode = true

		require.NoError(t, s.SetLocationManually("0", "0"))
		assert.False(t, s.ManualLocationMode)
	})
}

func TestAcquireLocation(t *testing.T) {
	t.Run("success records the fix", func(t *testing.T) {
		s := NewSession(true)
		geo := &fakeGeolocation{pos: &Position{Latitude: -0.18, Longitude: -78.47, Accuracy: 12}}

		err := s.AcquireLocation(context.Background(), geo, time.Second)
		require.NoError(t, err)
		assert.True(t, s.LocationAcquired)
		assert.False(t, s.ManualLocationMode)
		require.NotNil(t, s.Location())
		assert.Equal(t, 12.0, s.Location().Accuracy)
	})

	t.Run("denial falls back to manual mode", func(t *testing.T) {
		s := NewSession(true)
		geo := &fakeGeolocation{err: ErrPermissionDenied}

		err := s.AcquireLocation(context.Background(), geo, time.Second)
		require.Error(t, err)
		assert.True(t, errors.IsPermission(err))
		assert.True(t, s.ManualLocationMode)
		assert.False(t, s.LocationAcquired)
		assert.Nil(t, s.Location())
	})
}

func TestPhotoSlots(t *testing.T) {
	s := NewSession(true)

	s.AttachPhoto(SlotMeter, &Photo{Data: []byte("one"), MimeType: "image/jpeg"})
	s.AttachPhoto(SlotMeter, &Photo{Data: []byte("two"), MimeType: "image/png"})
	require.NotNil(t, s.Photo(SlotMeter))
	assert.Equal(t, []byte("two"), s.Photo(SlotMeter).Data)

	s.ClearPhoto(SlotMeter)
	s.ClearPhoto(SlotMeter) // idempotent
	assert.Nil(t, s.Photo(SlotMeter))
}

func TestSubmitGuard(t *testing.T) {
	s := NewSession(true)

	require.NoError(t, s.BeginSubmit())
	assert.True(t, s.Submitting())

	err := s.BeginSubmit()
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	s.EndSubmit()
	assert.False(t, s.Submitting())
	require.NoError(t, s.BeginSubmit())
}

func TestReset(t *testing.T) {
	s := completeSession(true)
	s.MeterNumber = "12345"

	s.Reset()

	assert.Empty(t, s.MeterNumber)
	assert.Nil(t, s.Photo(SlotMeter))
	assert.Nil(t, s.Location())
	_, ok := s.MeterValue()
	assert.False(t, ok)
}
