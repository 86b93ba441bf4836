// Copyright (C) 2021  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/postfach/internal/crypto"
	"github.com/lukasdietrich/postfach/internal/log"
	"github.com/lukasdietrich/postfach/internal/models"
)

func init() {
	viper.SetDefault("storage.mailboxes.foldername", "data/mailboxes")
}

// Filenames inside a mailbox folder. A delivery consists of a content file
// and a metadata file sharing the same stem. The stem starts with a
// sortable timestamp, but uniqueness comes from a random suffix, because
// two deliveries may race within the same second. Files not matching either
// pattern are ignored by all readers.
const (
	contentPrefix  = "email_"
	contentSuffix  = ".eml"
	metadataPrefix = "metadata_"
	metadataSuffix = ".json"

	stemTimeLayout = "20060102_150405"
)

// MailboxesOptions is the configuration for the mailbox store.
type MailboxesOptions struct {
	// Foldername is the base folder containing one folder per mailbox.
	Foldername string
}

// MailboxesOptionsFromViper reads the mailbox store configuration from viper.
//
// `storage.mailboxes.foldername` is the base folder for mailboxes.
func MailboxesOptionsFromViper() MailboxesOptions {
	return MailboxesOptions{
		Foldername: viper.GetString("storage.mailboxes.foldername"),
	}
}

// Mailboxes is the durable per-recipient message store. It exclusively owns
// the on-disk representation. Deliveries to different mailboxes never
// contend and deliveries to the same mailbox rely on unique filenames
// instead of locks.
type Mailboxes struct {
	fs    afero.Fs
	idGen crypto.IDGenerator
	opts  MailboxesOptions
	clock func() time.Time
}

// NewMailboxes creates a new mailbox store inside opts.Foldername.
func NewMailboxes(fs afero.Fs, idGen crypto.IDGenerator, opts MailboxesOptions) (*Mailboxes, error) {
	if err := fs.MkdirAll(opts.Foldername, 0700); err != nil {
		return nil, fmt.Errorf("storage: could not create mailbox folder: %w", err)
	}

	return &Mailboxes{
		fs:    fs,
		idGen: idGen,
		opts:  opts,
		clock: time.Now,
	}, nil
}

// Deliver writes a copy of the message and its metadata record into the
// mailbox of a single recipient. The mailbox folder is created on first
// use. The content file is written before the metadata file; the presence
// of the metadata file is the signal that the delivery is complete. Readers
// treat an orphaned content file as not yet visible.
func (m *Mailboxes) Deliver(
	ctx context.Context,
	to models.Address,
	from string,
	subject string,
	content []byte,
) (*DeliveryRecord, error) {
	mailboxID := EncodeMailboxID(to)
	ctx = log.WithMailbox(ctx, mailboxID)

	folder := path.Join(m.opts.Foldername, mailboxID)
	if err := m.fs.MkdirAll(folder, 0700); err != nil {
		return nil, fmt.Errorf("storage: could not create mailbox %q: %w", mailboxID, err)
	}

	now := m.clock().UTC()

	stem, err := m.generateStem(now)
	if err != nil {
		return nil, err
	}

	record := DeliveryRecord{
		Timestamp: now,
		From:      from,
		To:        to.String(),
		Subject:   subject,
		Filename:  contentPrefix + stem + contentSuffix,
	}

	if err := m.writeContent(folder, record.Filename, content); err != nil {
		return nil, err
	}

	if err := m.writeMetadata(folder, metadataPrefix+stem+metadataSuffix, &record); err != nil {
		m.rollbackContent(ctx, folder, record.Filename)
		return nil, err
	}

	log.DebugContext(ctx).
		Str("filename", record.Filename).
		Msg("message delivered to mailbox")

	return &record, nil
}

// generateStem combines the current instant with a random suffix. The
// timestamp makes the filename sortable, the suffix makes it unique.
func (m *Mailboxes) generateStem(now time.Time) (string, error) {
	suffix, err := m.idGen.GenerateID()
	if err != nil {
		return "", fmt.Errorf("storage: could not generate filename: %w", err)
	}

	return now.Format(stemTimeLayout) + "_" + suffix, nil
}

func (m *Mailboxes) writeContent(folder, filename string, content []byte) error {
	if err := afero.WriteFile(m.fs, path.Join(folder, filename), content, 0600); err != nil {
		return fmt.Errorf("storage: could not write content %q: %w", filename, err)
	}

	return nil
}

func (m *Mailboxes) writeMetadata(folder, filename string, record *DeliveryRecord) error {
	metadata, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return fmt.Errorf("storage: could not marshal metadata: %w", err)
	}

	if err := afero.WriteFile(m.fs, path.Join(folder, filename), metadata, 0600); err != nil {
		return fmt.Errorf("storage: could not write metadata %q: %w", filename, err)
	}

	return nil
}

// rollbackContent removes a content file after the metadata write failed.
// Errors are logged but not handled, because we do not want to shadow the
// original cause of the rollback.
func (m *Mailboxes) rollbackContent(ctx context.Context, folder, filename string) {
	if err := m.fs.Remove(path.Join(folder, filename)); err != nil {
		log.WarnContext(ctx).
			Str("filename", filename).
			Err(err).
			Msg("could not remove orphaned content file")
	}
}

// ListMailboxes enumerates all existing mailboxes. Folder names that do not
// decode to an address are skipped, not errors.
func (m *Mailboxes) ListMailboxes(ctx context.Context) ([]models.Address, error) {
	entries, err := afero.ReadDir(m.fs, m.opts.Foldername)
	if err != nil {
		return nil, fmt.Errorf("storage: could not list mailboxes: %w", err)
	}

	var addresses []models.Address

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		address, err := DecodeMailboxID(entry.Name())
		if err != nil {
			log.DebugContext(ctx).
				Str("folder", entry.Name()).
				Msg("skipping folder not decodable to an address")

			continue
		}

		addresses = append(addresses, address)
	}

	return addresses, nil
}

// ListRecords returns the delivery records of a mailbox sorted by timestamp
// descending. Ties are broken by content filename descending, so the order
// is deterministic. Unknown files and unparsable metadata are ignored.
func (m *Mailboxes) ListRecords(ctx context.Context, to models.Address) ([]DeliveryRecord, error) {
	mailboxID := EncodeMailboxID(to)
	ctx = log.WithMailbox(ctx, mailboxID)

	folder := path.Join(m.opts.Foldername, mailboxID)

	entries, err := afero.ReadDir(m.fs, folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: mailbox %q", ErrNotFound, mailboxID)
		}

		return nil, fmt.Errorf("storage: could not list mailbox %q: %w", mailboxID, err)
	}

	var records []DeliveryRecord

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, metadataPrefix) || !strings.HasSuffix(name, metadataSuffix) {
			continue
		}

		record, err := m.readMetadata(folder, name)
		if err != nil {
			log.WarnContext(ctx).
				Str("filename", name).
				Err(err).
				Msg("skipping unreadable metadata file")

			continue
		}

		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.After(records[j].Timestamp)
		}

		return records[i].Filename > records[j].Filename
	})

	return records, nil
}

func (m *Mailboxes) readMetadata(folder, filename string) (DeliveryRecord, error) {
	var record DeliveryRecord

	metadata, err := afero.ReadFile(m.fs, path.Join(folder, filename))
	if err != nil {
		return record, err
	}

	err = json.Unmarshal(metadata, &record)
	return record, err
}

// ReadRawContent returns the raw bytes of a single delivered message. The
// filename must be one previously returned in a DeliveryRecord.
func (m *Mailboxes) ReadRawContent(ctx context.Context, to models.Address, filename string) ([]byte, error) {
	if filename != path.Base(filename) || filename == "." || filename == ".." {
		return nil, fmt.Errorf("%w: invalid filename %q", ErrNotFound, filename)
	}

	mailboxID := EncodeMailboxID(to)

	content, err := afero.ReadFile(m.fs, path.Join(m.opts.Foldername, mailboxID, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q in mailbox %q", ErrNotFound, filename, mailboxID)
		}

		return nil, fmt.Errorf("storage: could not read %q: %w", filename, err)
	}

	return content, nil
}
