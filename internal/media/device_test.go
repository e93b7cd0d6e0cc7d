package media

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceGeolocator(t *testing.T) {
	geo := DeviceGeolocator{}

	_, err := geo.CurrentPosition(context.Background(), FixOptions{})
	assert.Error(t, err, "no report attached means no fix")

	ctx := WithDeviceReport(context.Background(), DeviceReport{
		Position: &Position{Latitude: 37.4219, Longitude: -122.084},
	})
	pos, err := geo.CurrentPosition(ctx, FixOptions{})
	require.NoError(t, err)
	assert.Equal(t, 37.4219, pos.Latitude)
	assert.Equal(t, -122.084, pos.Longitude)
}

func TestDeviceContacts(t *testing.T) {
	contacts := DeviceContacts{}

	granted, err := contacts.CheckPermission(context.Background())
	require.NoError(t, err)
	assert.False(t, granted, "an unchecked prompt counts as denied")

	ctx := WithDeviceReport(context.Background(), DeviceReport{ContactsChecked: true, ContactsGranted: true})
	granted, err = contacts.CheckPermission(ctx)
	require.NoError(t, err)
	assert.True(t, granted)

	ctx = WithDeviceReport(context.Background(), DeviceReport{ContactsChecked: true, ContactsGranted: false})
	granted, err = contacts.CheckPermission(ctx)
	require.NoError(t, err)
	assert.False(t, granted)
}
