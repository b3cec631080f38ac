package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/shashiranjanraj/vendordesk/config"
	"github.com/shashiranjanraj/vendordesk/pkg/logger"
)

// Manager holds the configured disks.
type Manager struct {
	disks       map[string]Disk
	defaultDisk string
}

// NewManager boots the "local" disk and, when S3_BUCKET is set, the "s3"
// disk. STORAGE_DISK picks the default.
func NewManager(ctx context.Context) (*Manager, error) {
	local, err := NewLocal(config.StorageLocalRoot(), "")
	if err != nil {
		return nil, err
	}
	m := &Manager{
		disks:       map[string]Disk{"local": local},
		defaultDisk: config.StorageDefault(),
	}

	if bucket := config.StorageS3Bucket(); bucket != "" {
		d, err := NewS3(ctx, S3Config{
			Bucket:   bucket,
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		})
		if err != nil {
			logger.WithCtx(ctx).Warn("storage/s3: disk disabled", "error", err)
		} else {
			m.disks["s3"] = d
		}
	}

	if _, ok := m.disks[m.defaultDisk]; !ok {
		return nil, fmt.Errorf("storage: default disk %q is not configured", m.defaultDisk)
	}
	return m, nil
}

// NewManagerWith builds a manager from explicit disks, for tests and
// embedding applications.
func NewManagerWith(defaultDisk string, disks map[string]Disk) *Manager {
	return &Manager{disks: disks, defaultDisk: defaultDisk}
}

// Disk returns the named disk.
func (m *Manager) Disk(name string) (Disk, error) {
	d, ok := m.disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the STORAGE_DISK disk.
func (m *Manager) Default() Disk { return m.disks[m.defaultDisk] }

// Names lists configured disks.
func (m *Manager) Names() []string {
	out := make([]string, 0, len(m.disks))
	for n := range m.disks {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
