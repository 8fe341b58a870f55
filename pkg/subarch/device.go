package subarch

import (
	"context"

	"github.com/matzehuels/subarch/pkg/device"
)

// FromDevice builds the order of a bundled device, or of a device file when
// ref is a path. See [device.Resolve].
func FromDevice(ctx context.Context, ref string, opts ...Option) (*Order, error) {
	d, err := device.Resolve(ref)
	if err != nil {
		return nil, err
	}
	g, err := d.Graph()
	if err != nil {
		return nil, err
	}
	return Build(ctx, g, opts...)
}
