/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// Package store keeps summaries of parsed captures in a bbolt database,
// one bucket per capture.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-usbmon/pkg/descriptors"
	"jinr.ru/greenlab/go-usbmon/pkg/log"
	"jinr.ru/greenlab/go-usbmon/pkg/session"
	"jinr.ru/greenlab/go-usbmon/pkg/stats"
)

const (
	BucketPrefix    = "capture_"
	SummaryKey      = "summary"
	DeviceKeyPrefix = "device_"
	openLockTimeout = 5 * time.Second
)

// Capture is what the store remembers about one parsed capture
type Capture struct {
	Name       string        `json:"name"`
	Source     string        `json:"source"`
	ImportedAt time.Time     `json:"importedAt"`
	Pairs      int           `json:"pairs"`
	Pending    int           `json:"pending"`
	Stats      *stats.Report `json:"stats"`
}

type Store struct {
	DB *bbolt.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: openLockTimeout})
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close ...
func (s *Store) Close() error {
	return s.DB.Close()
}

func BucketName(captureName string) string {
	return fmt.Sprintf("%s%s", BucketPrefix, captureName)
}

func deviceKey(d *descriptors.DeviceDescriptor) []byte {
	return []byte(fmt.Sprintf("%s%s", DeviceKeyPrefix, d.Address))
}

// Import stores the summary and the device descriptors of sess under name.
// An existing capture with the same name is replaced only if overwrite is set.
func (s *Store) Import(name, source string, sess *session.Session, overwrite bool) (*Capture, error) {
	log.Debug("Importing capture: %s from %s", name, source)
	c := &Capture{
		Name:       name,
		Source:     source,
		ImportedAt: time.Now().UTC(),
		Pairs:      sess.Len(),
		Pending:    sess.Pending(),
		Stats:      stats.Collect(sess, ""),
	}
	summary, err := yaml.Marshal(c)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Update(func(tx *bbolt.Tx) error {
		bucketName := []byte(BucketName(name))
		if tx.Bucket(bucketName) != nil {
			if !overwrite {
				return ErrCaptureExists{Name: name}
			}
			if err := tx.DeleteBucket(bucketName); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(bucketName)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(SummaryKey), summary); err != nil {
			return err
		}
		for _, d := range c.Stats.Devices {
			ddBytes, err := yaml.Marshal(d)
			if err != nil {
				return err
			}
			if err := b.Put(deviceKey(d), ddBytes); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return c, nil
}

// Get ...
func (s *Store) Get(name string) (*Capture, error) {
	log.Debug("Getting capture: %s", name)
	c := &Capture{}
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName(name)))
		if b == nil {
			return ErrCaptureNotFound{Name: name}
		}
		summary := b.Get([]byte(SummaryKey))
		if summary == nil {
			return ErrCaptureNotFound{Name: name}
		}
		return yaml.Unmarshal(summary, c)
	}); err != nil {
		return nil, err
	}
	return c, nil
}

// Devices returns the device descriptors stored with a capture, ordered by address
func (s *Store) Devices(name string) ([]*descriptors.DeviceDescriptor, error) {
	log.Debug("Getting devices of capture: %s", name)
	var devices []*descriptors.DeviceDescriptor
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName(name)))
		if b == nil {
			return ErrCaptureNotFound{Name: name}
		}
		c := b.Cursor()
		prefix := []byte(DeviceKeyPrefix)
		for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), DeviceKeyPrefix); k, v = c.Next() {
			dd := &descriptors.DeviceDescriptor{}
			if err := yaml.Unmarshal(v, dd); err != nil {
				log.Error("Error while unmarshalling DeviceDescriptor %s", err)
				return err
			}
			devices = append(devices, dd)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Address.Less(devices[j].Address)
	})
	return devices, nil
}

// List returns every stored capture ordered by name
func (s *Store) List() ([]*Capture, error) {
	log.Debug("Getting all captures")
	var captures []*Capture
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			if !strings.HasPrefix(string(name), BucketPrefix) {
				return nil
			}
			summary := b.Get([]byte(SummaryKey))
			if summary == nil {
				log.Warning("Bucket without summary: %s", name)
				return nil
			}
			c := &Capture{}
			if err := yaml.Unmarshal(summary, c); err != nil {
				log.Error("Error while unmarshalling Capture %s", err)
				return err
			}
			captures = append(captures, c)
			return nil
		})
	}); err != nil {
		return nil, err
	}
	sort.Slice(captures, func(i, j int) bool {
		return captures[i].Name < captures[j].Name
	})
	return captures, nil
}

// Delete ...
func (s *Store) Delete(name string) error {
	log.Debug("Deleting capture: %s", name)
	return s.DB.Update(func(tx *bbolt.Tx) error {
		err := tx.DeleteBucket([]byte(BucketName(name)))
		if err == bbolt.ErrBucketNotFound {
			return ErrCaptureNotFound{Name: name}
		}
		return err
	})
}
