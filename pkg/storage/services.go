package storage

import (
	"fmt"

	"github.com/driveshare/driveshare/pkg/config"
	"github.com/driveshare/driveshare/pkg/storage/drive"
	"github.com/driveshare/driveshare/pkg/storage/drive/google"
	drivememory "github.com/driveshare/driveshare/pkg/storage/drive/memory"
	"github.com/driveshare/driveshare/pkg/storage/kv"
)

// Services bundles the external collaborators. It is constructed once at
// startup and injected into everything that needs it; nothing here is a
// package-level singleton.
type Services struct {
	KV    kv.KV
	Drive drive.Drive
}

func New(c config.Config) (*Services, error) {
	rc := &Services{}

	var err error
	if rc.KV, err = kv.NewKV(c.KV); err != nil {
		return nil, err
	}

	if rc.Drive, err = NewDrive(c.Drive); err != nil {
		return nil, err
	}

	return rc, nil
}

func NewDrive(conf config.Drive) (drive.Drive, error) {
	switch conf.Type {
	case "google":
		return google.NewDrive(conf.Settings)
	case "memory":
		return drivememory.NewDrive(conf.Settings)
	}

	return nil, fmt.Errorf("unsupported drive backend: %s", conf.Type)
}
