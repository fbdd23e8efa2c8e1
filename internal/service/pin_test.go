package service

import (
	"bytes"
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrdesk/qr-admin-api/internal/domain"
)

func TestPinService_GeneratePins(t *testing.T) {
	pins := &fakePins{clash: 1}
	svc := NewPinService(pins, newFakeQrs(domain.Qr{ID: 1}))

	numbers, err := svc.GeneratePins(context.Background(), 1, 50)
	require.NoError(t, err)
	require.Len(t, numbers, 50)

	seen := map[string]bool{}
	for _, n := range numbers {
		assert.Len(t, n, 6)
		v, err := strconv.Atoi(n)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, pinMin)
		assert.LessOrEqual(t, v, pinMax)
		assert.False(t, seen[n], "duplicate pin %s", n)
		seen[n] = true
	}
	assert.Len(t, pins.pins, 50)
	assert.Zero(t, pins.clash)
}

func TestPinService_GeneratePinsUnknownQr(t *testing.T) {
	svc := NewPinService(&fakePins{}, newFakeQrs())

	_, err := svc.GeneratePins(context.Background(), 1, 5)
	assert.ErrorIs(t, err, ErrQrNotFound)
}

func TestPinService_ExportCSV(t *testing.T) {
	pins := &fakePins{}
	ctx := context.Background()
	require.NoError(t, pins.CreateAll(ctx, 1, []string{"111111", "222222"}))
	require.NoError(t, pins.CreateAll(ctx, 2, []string{"333333"}))
	svc := NewPinService(pins, newFakeQrs(domain.Qr{ID: 1}))

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, domain.Qr{ID: 1, Name: "Fair, 2024"}, &buf))

	assert.Equal(t, "\xEF\xBB\xBFqr_name,pin_number\n\"Fair, 2024\",111111\n\"Fair, 2024\",222222\n", buf.String())
}

func TestPinService_ExportFileName(t *testing.T) {
	svc := NewPinService(&fakePins{}, newFakeQrs())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC) }

	assert.Equal(t, "qr-3-pins-20240501_130405.csv", svc.ExportFileName(3))
}
