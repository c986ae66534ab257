package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/timetable-admin/internal/api"
	"github.com/JonMunkholm/timetable-admin/internal/auth"
	"github.com/JonMunkholm/timetable-admin/internal/csvimport"
	"github.com/JonMunkholm/timetable-admin/internal/logging"
	"github.com/JonMunkholm/timetable-admin/internal/validation"
)

// Import reads one uploaded file and creates a record per row, strictly in
// file order. Rows that fail to build or save are collected in FailedRows and
// do not stop later rows.
//
// A file that cannot be read returns (nil, err). If ctx ends part way
// through, the partial result is returned together with the context error.
func (s *Service) Import(ctx context.Context, role auth.Role, key string, up csvimport.Upload) (*ImportResult, error) {
	def, err := s.Panel(role, key)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res := &ImportResult{
		ImportID:   uuid.NewString(),
		Panel:      key,
		FileName:   up.Name,
		FailedRows: []FailedRow{},
		StartedAt:  s.now().UTC(),
	}
	start := time.Now()

	log := logging.WithFields(ctx,
		"import_id", res.ImportID,
		"panel", key,
		"file", up.Name,
		"actor", actorFromContext(ctx),
		"client_ip", clientIPFromContext(ctx),
	)
	log.Info("import started", "synced", s.Synced(def))

	target := s.storeFor(def)
	loaded := false

	err = s.adapter.Read(ctx, up, def.Info.Headers, func(b csvimport.Batch) error {
		loaded = true
		res.TotalRows = len(b.Normalized)

		for _, row := range b.Normalized {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := s.buildRecord(def, row)
			if err == nil {
				_, err = target.Create(ctx, key, data)
			}
			if err != nil {
				res.FailedRows = append(res.FailedRows, FailedRow{
					Line:   row.Line,
					Reason: rowReason(err),
					Data:   row.Map(),
				})
				log.Debug("row rejected", "line", row.Line, "error", err)
				continue
			}
			res.Created++
		}
		return nil
	})

	res.Skipped = len(res.FailedRows)
	res.Duration = time.Since(start)

	if !loaded {
		log.Warn("import rejected", "error", err)
		return nil, err
	}

	s.remember(*res)

	if err != nil {
		log.Warn("import interrupted", "error", err, "created", res.Created, "total", res.TotalRows)
		return res, err
	}

	log.Info("import complete",
		"total", res.TotalRows,
		"created", res.Created,
		"skipped", res.Skipped,
		"duration", res.Duration,
	)
	return res, nil
}

// Preview parses and normalizes a file without saving anything.
func (s *Service) Preview(ctx context.Context, role auth.Role, key string, up csvimport.Upload) (*PreviewResult, error) {
	def, err := s.Panel(role, key)
	if err != nil {
		return nil, err
	}

	batch, err := s.adapter.Load(ctx, up, def.Info.Headers)
	if err != nil {
		return nil, err
	}

	rows := make([]PreviewRow, len(batch.Normalized))
	for i, r := range batch.Normalized {
		rows[i] = PreviewRow{Line: r.Line, Values: r.Fields}
	}

	return &PreviewResult{
		Panel:     key,
		FileName:  batch.FileName,
		Headers:   def.Info.Headers,
		TotalRows: len(rows),
		Rows:      rows,
	}, nil
}

// rowReason is the text shown next to a failed row.
func rowReason(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return validation.Describe(err)
}
