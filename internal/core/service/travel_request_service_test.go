package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/agencia-oeste/viajes-api/internal/core/domain"
	"github.com/agencia-oeste/viajes-api/internal/core/ports"
)

type stubTravelRequestRepo struct {
	mu      sync.Mutex
	records []domain.TravelRequest
	loadErr error
}

func (r *stubTravelRequestRepo) All(context.Context) ([]domain.TravelRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	out := make([]domain.TravelRequest, len(r.records))
	copy(out, r.records)
	return out, nil
}

func (r *stubTravelRequestRepo) FindByID(_ context.Context, id string) (*domain.TravelRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			found := rec
			return &found, nil
		}
	}
	return nil, domain.ErrTravelRequestNotFound
}

func (r *stubTravelRequestRepo) Append(_ context.Context, rec *domain.TravelRequest, assign ports.IDAssigner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.records))
	for i, existing := range r.records {
		ids[i] = existing.ID
	}
	rec.ID = assign(ids)
	r.records = append(r.records, *rec)
	return nil
}

func (r *stubTravelRequestRepo) Update(_ context.Context, id string, mutate ports.TravelRequestMutation) (*domain.TravelRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rec := range r.records {
		if rec.ID != id {
			continue
		}
		next, err := mutate(rec)
		if err != nil {
			return nil, err
		}
		r.records[i] = next
		return &next, nil
	}
	return nil, domain.ErrTravelRequestNotFound
}

func (r *stubTravelRequestRepo) Remove(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rec := range r.records {
		if rec.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

const (
	agentEmail  = "agente@agencia.cl"
	clientEmail = "ana@x.cl"
)

func newTestTravelRequestService(repo *stubTravelRequestRepo) *TravelRequestService {
	return NewTravelRequestService(repo, NewAgentAllowList([]string{agentEmail}), zerolog.Nop())
}

func validInput() ports.TravelRequestInput {
	return ports.TravelRequestInput{
		DNI:           "12345678-9",
		ClientName:    "Ana Pérez",
		Origin:        "Santiago",
		Destination:   "Lima",
		TripType:      "turismo",
		DepartureDate: "2026-01-05T10:00",
		ReturnDate:    "2026-01-10T10:00",
		Status:        "pendiente",
	}
}

func TestTravelRequestService_Create_Success(t *testing.T) {
	repo := &stubTravelRequestRepo{}
	svc := newTestTravelRequestService(repo)

	created, err := svc.Create(context.Background(), validInput(), clientEmail)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != "1118" {
		t.Fatalf("expected first id 1118, got %s", created.ID)
	}
	if created.OwnerEmail != clientEmail {
		t.Fatalf("unexpected owner: %s", created.OwnerEmail)
	}
	if created.RegisteredAt.IsZero() || created.UpdatedAt != nil {
		t.Fatalf("unexpected timestamps: %v %v", created.RegisteredAt, created.UpdatedAt)
	}
	if created.DepartureDate != "2026-01-05T10:00" {
		t.Fatalf("dates must be stored as submitted, got %s", created.DepartureDate)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if *got != *created {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, created)
	}
}

func TestTravelRequestService_Create_RejectsReturnBeforeDeparture(t *testing.T) {
	repo := &stubTravelRequestRepo{}
	svc := newTestTravelRequestService(repo)

	in := validInput()
	in.DepartureDate, in.ReturnDate = "2026-01-10T10:00", "2026-01-05T10:00"
	if _, err := svc.Create(context.Background(), in, clientEmail); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	in.ReturnDate = in.DepartureDate
	if _, err := svc.Create(context.Background(), in, clientEmail); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for equal dates, got %v", err)
	}
	if len(repo.records) != 0 {
		t.Fatalf("rejected input must not be stored")
	}

	created, err := svc.Create(context.Background(), validInput(), clientEmail)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != "1118" {
		t.Fatalf("expected id 1118 on fresh store, got %s", created.ID)
	}
}

func TestTravelRequestService_Create_Validation(t *testing.T) {
	cases := map[string]func(*ports.TravelRequestInput){
		"bad dni":         func(in *ports.TravelRequestInput) { in.DNI = "1234-5" },
		"missing dni":     func(in *ports.TravelRequestInput) { in.DNI = "" },
		"blank name":      func(in *ports.TravelRequestInput) { in.ClientName = "   " },
		"unknown trip":    func(in *ports.TravelRequestInput) { in.TripType = "crucero" },
		"unknown status":  func(in *ports.TravelRequestInput) { in.Status = "cerrada" },
		"unparsable date": func(in *ports.TravelRequestInput) { in.DepartureDate = "mañana" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			svc := newTestTravelRequestService(&stubTravelRequestRepo{})
			in := validInput()
			mutate(&in)
			if _, err := svc.Create(context.Background(), in, clientEmail); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestTravelRequestService_Create_ConcurrentIDsAreUnique(t *testing.T) {
	repo := &stubTravelRequestRepo{}
	svc := newTestTravelRequestService(repo)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Create(context.Background(), validInput(), clientEmail); err != nil {
				t.Errorf("Create returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, r := range repo.records {
		if seen[r.ID] {
			t.Fatalf("duplicate id %s", r.ID)
		}
		seen[r.ID] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d records, got %d", n, len(seen))
	}
}

func TestTravelRequestService_Update(t *testing.T) {
	repo := &stubTravelRequestRepo{}
	svc := newTestTravelRequestService(repo)
	created, err := svc.Create(context.Background(), validInput(), clientEmail)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	in := validInput()
	in.Status = "en proceso"
	in.Destination = "Cusco"
	updated, err := svc.Update(context.Background(), created.ID, in)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Status != domain.StatusInProgress || updated.Destination != "Cusco" {
		t.Fatalf("fields not replaced: %+v", updated)
	}
	if updated.ID != created.ID || updated.OwnerEmail != created.OwnerEmail || !updated.RegisteredAt.Equal(created.RegisteredAt) {
		t.Fatalf("immutable fields changed: %+v", updated)
	}
	if updated.UpdatedAt == nil {
		t.Fatalf("expected fechaActualizacion to be set")
	}

	if _, err := svc.Update(context.Background(), "9999", in); !errors.Is(err, domain.ErrTravelRequestNotFound) {
		t.Fatalf("expected ErrTravelRequestNotFound, got %v", err)
	}

	in.DNI = "x"
	if _, err := svc.Update(context.Background(), created.ID, in); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTravelRequestService_Delete(t *testing.T) {
	repo := &stubTravelRequestRepo{}
	svc := newTestTravelRequestService(repo)
	created, err := svc.Create(context.Background(), validInput(), clientEmail)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID, clientEmail); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for client, got %v", err)
	}
	if _, err := svc.Get(context.Background(), created.ID); err != nil {
		t.Fatalf("record must survive a forbidden delete: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID, agentEmail); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID, agentEmail); !errors.Is(err, domain.ErrTravelRequestNotFound) {
		t.Fatalf("expected ErrTravelRequestNotFound, got %v", err)
	}
}

func seedRequests(t *testing.T, svc *TravelRequestService) {
	t.Helper()
	seed := []struct {
		owner  string
		status string
	}{
		{clientEmail, "pendiente"},
		{clientEmail, "finalizada"},
		{"otro@x.cl", "pendiente"},
		{"otro@x.cl", "en proceso"},
	}
	for _, s := range seed {
		in := validInput()
		in.Status = s.status
		if _, err := svc.Create(context.Background(), in, s.owner); err != nil {
			t.Fatalf("seed Create returned error: %v", err)
		}
	}
}

func TestTravelRequestService_List_RoleFiltering(t *testing.T) {
	svc := newTestTravelRequestService(&stubTravelRequestRepo{})
	seedRequests(t, svc)

	res, err := svc.List(context.Background(), clientEmail, "")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if res.Role != domain.RoleClient || len(res.Items) != 2 {
		t.Fatalf("unexpected client list: role=%s n=%d", res.Role, len(res.Items))
	}
	for _, r := range res.Items {
		if r.OwnerEmail != clientEmail {
			t.Fatalf("client received foreign record %s", r.ID)
		}
	}

	for _, status := range []string{"", "todas", "all"} {
		res, err = svc.List(context.Background(), agentEmail, status)
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		if res.Role != domain.RoleAgent || len(res.Items) != 4 {
			t.Fatalf("estado=%q: unexpected agent list: role=%s n=%d", status, res.Role, len(res.Items))
		}
	}

	res, err = svc.List(context.Background(), agentEmail, "pendiente")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 pending records, got %d", len(res.Items))
	}

	res, err = svc.List(context.Background(), "nuevo@x.cl", "")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if res.Items == nil || len(res.Items) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", res.Items)
	}
}

func TestTravelRequestService_List_StoreFailure(t *testing.T) {
	svc := newTestTravelRequestService(&stubTravelRequestRepo{loadErr: errors.New("disk on fire")})
	if _, err := svc.List(context.Background(), agentEmail, ""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTravelRequestService_Stats(t *testing.T) {
	svc := newTestTravelRequestService(&stubTravelRequestRepo{})
	seedRequests(t, svc)

	st, err := svc.Stats(context.Background(), agentEmail)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if st.Total != 4 || st.Pending != 2 || st.InProgress != 1 || st.Finished != 1 {
		t.Fatalf("unexpected agent stats: %+v", st)
	}

	st, err = svc.Stats(context.Background(), clientEmail)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if st.Total != 2 || st.Pending != 1 || st.Finished != 1 || st.Role != domain.RoleClient {
		t.Fatalf("unexpected client stats: %+v", st)
	}
}

func TestTravelRequestService_ClientNames(t *testing.T) {
	repo := &stubTravelRequestRepo{}
	svc := newTestTravelRequestService(repo)
	for _, name := range []string{"Zoe", "ana", "Ana", "Zoe"} {
		in := validInput()
		in.ClientName = name
		if _, err := svc.Create(context.Background(), in, clientEmail); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	names, err := svc.ClientNames(context.Background())
	if err != nil {
		t.Fatalf("ClientNames returned error: %v", err)
	}
	want := []string{"Ana", "Zoe", "ana"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Fatalf("ClientNames = %v, want %v", names, want)
	}
}

func TestTravelRequestService_NextID(t *testing.T) {
	repo := &stubTravelRequestRepo{}
	svc := newTestTravelRequestService(repo)

	id, err := svc.NextID(context.Background())
	if err != nil || id != "1118" {
		t.Fatalf("NextID on empty store = %q, %v", id, err)
	}

	repo.records = []domain.TravelRequest{{ID: "1118"}, {ID: "1120"}}
	id, err = svc.NextID(context.Background())
	if err != nil || id != "1121" {
		t.Fatalf("NextID = %q, %v; want 1121", id, err)
	}
}

func TestTravelRequestService_TimestampsAreMillisecondUTC(t *testing.T) {
	svc := newTestTravelRequestService(&stubTravelRequestRepo{})
	svc.now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.FixedZone("CLT", -3*3600))
	}

	created, err := svc.Create(context.Background(), validInput(), clientEmail)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	want := time.Date(2026, 3, 1, 15, 0, 0, 123000000, time.UTC)
	if !created.RegisteredAt.Equal(want) || created.RegisteredAt.Location() != time.UTC {
		t.Fatalf("fechaRegistro = %v, want %v", created.RegisteredAt, want)
	}
}
