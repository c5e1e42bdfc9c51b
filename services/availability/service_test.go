package availability

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
)

// memSlotRepo is an in-memory SlotRepository. Each transition holds the
// mutex for the full check-and-set, matching the atomicity contract of the
// Mongo implementation.
type memSlotRepo struct {
	mu    sync.Mutex
	slots map[string]*models.Slot
}

func newMemSlotRepo() *memSlotRepo {
	return &memSlotRepo{slots: make(map[string]*models.Slot)}
}

func (r *memSlotRepo) CreateMany(ctx context.Context, slots []models.Slot) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = slots[i].ProID + "-" + slots[i].Start.Format(time.RFC3339)
		}
		slots[i].Status = models.SlotStatusFree
		slots[i].CreatedAt = now
		slots[i].UpdatedAt = now
		cp := slots[i]
		r.slots[cp.ID] = &cp
	}
	return slots, nil
}

func (r *memSlotRepo) GetByID(ctx context.Context, id string) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[id]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	cp := *slot
	return &cp, nil
}

func (r *memSlotRepo) ListByProID(ctx context.Context, proID string, from, to *time.Time) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Slot
	for _, slot := range r.slots {
		if slot.ProID != proID {
			continue
		}
		if from != nil && slot.Start.Before(*from) {
			continue
		}
		if to != nil && slot.Start.After(*to) {
			continue
		}
		out = append(out, *slot)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Start.Before(out[i].Start) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *memSlotRepo) Hold(ctx context.Context, id string, expiresAt time.Time) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[id]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	if slot.Status != models.SlotStatusFree {
		return nil, &slotRepo.ConflictError{SlotID: id, Status: slot.Status}
	}
	slot.Status = models.SlotStatusHeld
	exp := expiresAt
	slot.HoldExpiresAt = &exp
	cp := *slot
	return &cp, nil
}

func (r *memSlotRepo) Confirm(ctx context.Context, id string, now time.Time) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[id]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	if slot.Status != models.SlotStatusHeld || slot.HoldExpiresAt == nil || !slot.HoldExpiresAt.After(now) {
		return nil, &slotRepo.ConflictError{SlotID: id, Status: slot.Status}
	}
	slot.Status = models.SlotStatusBooked
	slot.HoldExpiresAt = nil
	cp := *slot
	return &cp, nil
}

func (r *memSlotRepo) Release(ctx context.Context, id string) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[id]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	if slot.Status != models.SlotStatusHeld {
		return nil, &slotRepo.ConflictError{SlotID: id, Status: slot.Status}
	}
	slot.Status = models.SlotStatusFree
	slot.HoldExpiresAt = nil
	cp := *slot
	return &cp, nil
}

func (r *memSlotRepo) Free(ctx context.Context, id string) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[id]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	if slot.Status != models.SlotStatusHeld && slot.Status != models.SlotStatusBooked {
		return nil, &slotRepo.ConflictError{SlotID: id, Status: slot.Status}
	}
	slot.Status = models.SlotStatusFree
	slot.HoldExpiresAt = nil
	cp := *slot
	return &cp, nil
}

func (r *memSlotRepo) FindExpiredHeld(ctx context.Context, now time.Time, limit int64) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Slot
	for _, slot := range r.slots {
		if slot.Status == models.SlotStatusHeld && slot.HoldExpiresAt != nil && !slot.HoldExpiresAt.After(now) {
			out = append(out, *slot)
			if limit > 0 && int64(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

func newTestService(repo slotRepo.SlotRepository) *DefaultAvailabilityService {
	return &DefaultAvailabilityService{Repo: repo, Logger: zap.NewNop()}
}

func seedFreeSlot(t *testing.T, svc *DefaultAvailabilityService, proID string) models.Slot {
	t.Helper()
	start := time.Now().Add(24 * time.Hour).Truncate(time.Minute)
	created, err := svc.CreateSlots(context.Background(), proID, []models.SlotWindow{
		{Start: start, End: start.Add(30 * time.Minute)},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	return created[0]
}

func TestCreateSlotsValidation(t *testing.T) {
	svc := newTestService(newMemSlotRepo())
	start := time.Now().Add(time.Hour)

	cases := []struct {
		name    string
		proID   string
		windows []models.SlotWindow
	}{
		{"empty proId", "", []models.SlotWindow{{Start: start, End: start.Add(time.Hour)}}},
		{"no windows", "pro-1", nil},
		{"start equals end", "pro-1", []models.SlotWindow{{Start: start, End: start}}},
		{"start after end", "pro-1", []models.SlotWindow{{Start: start.Add(time.Hour), End: start}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateSlots(context.Background(), tc.proID, tc.windows)
			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
		})
	}
}

func TestCreateSlotsStartsFree(t *testing.T) {
	svc := newTestService(newMemSlotRepo())
	slot := seedFreeSlot(t, svc, "pro-1")

	require.Equal(t, models.SlotStatusFree, slot.Status)
	require.Nil(t, slot.HoldExpiresAt)
}

func TestListSlotsOrderedAndFiltered(t *testing.T) {
	svc := newTestService(newMemSlotRepo())
	base := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	windows := []models.SlotWindow{
		{Start: base.Add(2 * time.Hour), End: base.Add(3 * time.Hour)},
		{Start: base, End: base.Add(time.Hour)},
		{Start: base.Add(4 * time.Hour), End: base.Add(5 * time.Hour)},
	}
	_, err := svc.CreateSlots(context.Background(), "pro-1", windows)
	require.NoError(t, err)

	slots, err := svc.ListSlots(context.Background(), "pro-1", nil, nil)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	for i := 1; i < len(slots); i++ {
		require.True(t, slots[i-1].Start.Before(slots[i].Start), "slots must be ordered by start ascending")
	}

	from := base.Add(time.Hour)
	to := base.Add(3 * time.Hour)
	filtered, err := svc.ListSlots(context.Background(), "pro-1", &from, &to)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, base.Add(2*time.Hour).UTC(), filtered[0].Start)
}

func TestHoldTransitionsFreeToHeld(t *testing.T) {
	svc := newTestService(newMemSlotRepo())
	slot := seedFreeSlot(t, svc, "pro-1")

	held, err := svc.Hold(context.Background(), slot.ID, 5*time.Minute)
	require.NoError(t, err)
	require.Equal(t, models.SlotStatusHeld, held.Status)
	require.NotNil(t, held.HoldExpiresAt)
	require.WithinDuration(t, time.Now().Add(5*time.Minute), *held.HoldExpiresAt, 2*time.Second)
}

func TestHoldUnknownSlot(t *testing.T) {
	svc := newTestService(newMemSlotRepo())
	_, err := svc.Hold(context.Background(), "nope", 5*time.Minute)
	require.ErrorIs(t, err, slotRepo.ErrSlotNotFound)
}

func TestHoldConflictsWhenNotFree(t *testing.T) {
	svc := newTestService(newMemSlotRepo())
	slot := seedFreeSlot(t, svc, "pro-1")

	_, err := svc.Hold(context.Background(), slot.ID, 5*time.Minute)
	require.NoError(t, err)

	_, err = svc.Hold(context.Background(), slot.ID, 5*time.Minute)
	var conflict *slotRepo.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, models.SlotStatusHeld, conflict.Status)

	_, err = svc.Confirm(context.Background(), slot.ID)
	require.NoError(t, err)

	_, err = svc.Hold(context.Background(), slot.ID, 5*time.Minute)
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, models.SlotStatusBooked, conflict.Status)
}

func TestConcurrentHoldsExactlyOneWinner(t *testing.T) {
	svc := newTestService(newMemSlotRepo())
	slot := seedFreeSlot(t, svc, "pro-1")

	const attempts = 50
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Hold(context.Background(), slot.ID, 5*time.Minute)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		var conflict *slotRepo.ConflictError
		require.ErrorAs(t, err, &conflict)
		conflicts++
	}
	require.Equal(t, 1, wins, "exactly one concurrent hold must succeed")
	require.Equal(t, attempts-1, conflicts)
}

func TestConfirmRoundTrip(t *testing.T) {
	svc := newTestService(newMemSlotRepo())
	slot := seedFreeSlot(t, svc, "pro-1")

	_, err := svc.Hold(context.Background(), slot.ID, 5*time.Minute)
	require.NoError(t, err)

	booked, err := svc.Confirm(context.Background(), slot.ID)
	require.NoError(t, err)
	require.Equal(t, models.SlotStatusBooked, booked.Status)
	require.Nil(t, booked.HoldExpiresAt)
}

func TestConfirmRequiresHeld(t *testing.T) {
	svc := newTestService(newMemSlotRepo())
	slot := seedFreeSlot(t, svc, "pro-1")

	var conflict *slotRepo.ConflictError

	// FREE slot cannot be confirmed.
	_, err := svc.Confirm(context.Background(), slot.ID)
	require.ErrorAs(t, err, &conflict)

	_, err = svc.Hold(context.Background(), slot.ID, 5*time.Minute)
	require.NoError(t, err)
	_, err = svc.Confirm(context.Background(), slot.ID)
	require.NoError(t, err)

	// Already BOOKED cannot be confirmed again.
	_, err = svc.Confirm(context.Background(), slot.ID)
	require.ErrorAs(t, err, &conflict)
}

func TestConfirmAfterExpiryFailsEvenBeforeReap(t *testing.T) {
	svc := newTestService(newMemSlotRepo())
	slot := seedFreeSlot(t, svc, "pro-1")

	base := time.Now().UTC()
	svc.Now = func() time.Time { return base }
	_, err := svc.Hold(context.Background(), slot.ID, 5*time.Minute)
	require.NoError(t, err)

	// One second before expiry the confirm still lands.
	svc.Now = func() time.Time { return base.Add(5*time.Minute - time.Second) }
	booked, err := svc.Confirm(context.Background(), slot.ID)
	require.NoError(t, err)
	require.Equal(t, models.SlotStatusBooked, booked.Status)

	// Fresh slot, hold allowed to lapse: confirm must conflict even though
	// no reaper has swept yet.
	slot2 := seedFreeSlot(t, svc, "pro-2")
	svc.Now = func() time.Time { return base }
	_, err = svc.Hold(context.Background(), slot2.ID, 5*time.Minute)
	require.NoError(t, err)

	svc.Now = func() time.Time { return base.Add(6 * time.Minute) }
	_, err = svc.Confirm(context.Background(), slot2.ID)
	var conflict *slotRepo.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestReleaseRoundTrip(t *testing.T) {
	svc := newTestService(newMemSlotRepo())
	slot := seedFreeSlot(t, svc, "pro-1")

	_, err := svc.Hold(context.Background(), slot.ID, 5*time.Minute)
	require.NoError(t, err)

	freed, err := svc.Release(context.Background(), slot.ID)
	require.NoError(t, err)
	require.Equal(t, models.SlotStatusFree, freed.Status)
	require.Nil(t, freed.HoldExpiresAt)

	// A second release conflicts rather than corrupting state.
	_, err = svc.Release(context.Background(), slot.ID)
	var conflict *slotRepo.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, models.SlotStatusFree, conflict.Status)
}

func TestFreeSlotReturnsBookedToFree(t *testing.T) {
	svc := newTestService(newMemSlotRepo())
	slot := seedFreeSlot(t, svc, "pro-1")

	_, err := svc.Hold(context.Background(), slot.ID, 5*time.Minute)
	require.NoError(t, err)
	_, err = svc.Confirm(context.Background(), slot.ID)
	require.NoError(t, err)

	freed, err := svc.FreeSlot(context.Background(), slot.ID)
	require.NoError(t, err)
	require.Equal(t, models.SlotStatusFree, freed.Status)
	require.Nil(t, freed.HoldExpiresAt)

	_, err = svc.FreeSlot(context.Background(), slot.ID)
	var conflict *slotRepo.ConflictError
	require.ErrorAs(t, err, &conflict)
}
