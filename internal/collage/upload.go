/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package collage

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	applog "gocollage/internal/log"
)

// ErrStaleSlot is returned when an upload completes after its slot was
// replaced by a layout change or cleared.
var ErrStaleSlot = errors.New("stale slot reference")

// UploadTicket names the slot an asynchronous image load is meant for.
// It is only valid for the slot generation it was issued in.
type UploadTicket struct {
	Index      int
	Generation uint64
}

func (s *Surface) ticket(idx int) UploadTicket {
	return UploadTicket{Index: idx, Generation: s.generation}
}

// UploadTicketFor issues a ticket for slot i without going through a click.
func (s *Surface) UploadTicketFor(i int) (UploadTicket, bool) {
	if i < 0 || i >= len(s.slots) {
		return UploadTicket{}, false
	}
	return s.ticket(i), true
}

// CompleteUpload puts img into the ticket's slot and redraws. A nil image is
// ignored and leaves the slot's previous image in place.
func (s *Surface) CompleteUpload(t UploadTicket, img image.Image) error {
	if img == nil {
		return nil
	}
	if t.Generation != s.generation || t.Index < 0 || t.Index >= len(s.slots) {
		applog.WithOperation(s.log, "complete_upload").Debug("dropping stale upload",
			slog.Int("index", t.Index), slog.Uint64("ticket_gen", t.Generation), slog.Uint64("gen", s.generation))
		return fmt.Errorf("%w: slot %d of generation %d", ErrStaleSlot, t.Index, t.Generation)
	}
	s.slots[t.Index].img = img
	s.Redraw()
	return nil
}
