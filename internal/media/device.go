package media

import (
	"context"

	"github.com/pkg/errors"
)

// DeviceReport carries the signals only the device can produce: its current
// position fix and the outcome of the contacts permission prompt. The
// gateway attaches one to the request context before resolving.
type DeviceReport struct {
	Position        *Position
	ContactsChecked bool
	ContactsGranted bool
}

type deviceReportKey struct{}

func WithDeviceReport(ctx context.Context, report DeviceReport) context.Context {
	return context.WithValue(ctx, deviceReportKey{}, report)
}

func reportFrom(ctx context.Context) (DeviceReport, bool) {
	report, ok := ctx.Value(deviceReportKey{}).(DeviceReport)
	return report, ok
}

// DeviceGeolocator serves the fix the device relayed with the request.
type DeviceGeolocator struct{}

func (DeviceGeolocator) CurrentPosition(ctx context.Context, opts FixOptions) (*Position, error) {
	report, ok := reportFrom(ctx)
	if !ok || report.Position == nil {
		return nil, errors.New("no position fix relayed with the request")
	}
	return report.Position, nil
}

// DeviceContacts serves the permission outcome the device relayed. A request
// that never went through the permission prompt counts as denied.
type DeviceContacts struct{}

func (DeviceContacts) CheckPermission(ctx context.Context) (bool, error) {
	report, ok := reportFrom(ctx)
	if !ok || !report.ContactsChecked {
		return false, nil
	}
	return report.ContactsGranted, nil
}
