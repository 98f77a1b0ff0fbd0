package commissioning

import (
	"errors"
	"testing"
	"time"
)

// stubTransport records sends and hands completion control to the test.
type stubTransport struct {
	noNetwork  bool
	petitions  []stubRequest
	keepAlives []stubRequest
}

type stubRequest struct {
	iface          InterfaceID
	commissionerID string
	reported       State
	done           func(State)
}

func (s *stubTransport) SendPetition(iface InterfaceID, commissionerID string, done func(State)) error {
	if s.noNetwork {
		return ErrNoNetwork
	}
	s.petitions = append(s.petitions, stubRequest{iface: iface, commissionerID: commissionerID, done: done})
	return nil
}

func (s *stubTransport) SendKeepAlive(iface InterfaceID, state State, done func(State)) error {
	if s.noNetwork {
		return ErrNoNetwork
	}
	s.keepAlives = append(s.keepAlives, stubRequest{iface: iface, reported: state, done: done})
	return nil
}

func newTestManager(t *testing.T, tr Transport, now func() time.Time) *Manager {
	t.Helper()
	m, err := NewManager(ManagerConfig{Transport: tr, Clock: now})
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}
	return m
}

func TestNewManagerRequiresTransport(t *testing.T) {
	if _, err := NewManager(ManagerConfig{}); !errors.Is(err, ErrNilTransport) {
		t.Errorf("NewManager() error = %v, want %v", err, ErrNilTransport)
	}
}

func TestRegisterUnregister(t *testing.T) {
	m := newTestManager(t, &stubTransport{}, nil)

	if err := m.Register(1); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if err := m.Register(1); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("second Register() error = %v, want %v", err, ErrAlreadyRegistered)
	}
	if err := m.Unregister(1); err != nil {
		t.Fatalf("Unregister() error: %v", err)
	}
	if err := m.Unregister(1); !errors.Is(err, ErrUnknownInterface) {
		t.Errorf("second Unregister() error = %v, want %v", err, ErrUnknownInterface)
	}
	if err := m.Register(1); err != nil {
		t.Errorf("Register() after Unregister() error = %v, want nil", err)
	}
}

func TestPetitionRequiresRegistration(t *testing.T) {
	m := newTestManager(t, &stubTransport{}, nil)

	if err := m.PetitionStart(1, "CID1", nil); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("PetitionStart() error = %v, want %v", err, ErrNotRegistered)
	}
	if err := m.PetitionKeepAlive(1, StateAccept); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("PetitionKeepAlive() error = %v, want %v", err, ErrNotRegistered)
	}
}

func TestPetitionAccepted(t *testing.T) {
	tr := &stubTransport{}
	m := newTestManager(t, tr, nil)
	m.Register(1)

	var reported []State
	if err := m.PetitionStart(1, "CID1", func(iface InterfaceID, st State) {
		if iface != 1 {
			t.Errorf("callback iface = %d, want 1", iface)
		}
		reported = append(reported, st)
	}); err != nil {
		t.Fatalf("PetitionStart() error: %v", err)
	}

	s, _ := m.Session(1)
	if s.State() != SessionPetitionPending {
		t.Fatalf("State() = %v, want %v", s.State(), SessionPetitionPending)
	}
	if len(tr.petitions) != 1 || tr.petitions[0].commissionerID != "CID1" {
		t.Fatalf("transport saw %+v, want one petition from CID1", tr.petitions)
	}

	tr.petitions[0].done(StateAccept)

	if s.State() != SessionActive {
		t.Errorf("State() = %v after accept, want %v", s.State(), SessionActive)
	}
	if len(reported) != 1 || reported[0] != StateAccept {
		t.Errorf("status reports = %v, want [Accept]", reported)
	}
	if s.CommissionerID() != "CID1" {
		t.Errorf("CommissionerID() = %q, want %q", s.CommissionerID(), "CID1")
	}
}

func TestPetitionRejected(t *testing.T) {
	tr := &stubTransport{}
	m := newTestManager(t, tr, nil)
	m.Register(1)

	var got State
	m.PetitionStart(1, "CID1", func(_ InterfaceID, st State) { got = st })
	tr.petitions[0].done(StateReject)

	s, _ := m.Session(1)
	if s.State() != SessionRejected {
		t.Errorf("State() = %v, want %v", s.State(), SessionRejected)
	}
	if got != StateReject {
		t.Errorf("reported state = %v, want %v", got, StateReject)
	}

	// A rejected session may petition again.
	if err := m.PetitionStart(1, "CID1", nil); err != nil {
		t.Errorf("PetitionStart() after reject error = %v, want nil", err)
	}
}

func TestPetitionPendingStaysPending(t *testing.T) {
	tr := &stubTransport{}
	m := newTestManager(t, tr, nil)
	m.Register(1)

	var got State
	m.PetitionStart(1, "CID1", func(_ InterfaceID, st State) { got = st })
	tr.petitions[0].done(StatePending)

	s, _ := m.Session(1)
	if s.State() != SessionPetitionPending {
		t.Errorf("State() = %v, want %v", s.State(), SessionPetitionPending)
	}
	if got != StatePending {
		t.Errorf("reported state = %v, want %v", got, StatePending)
	}
}

func TestPetitionNoNetwork(t *testing.T) {
	tr := &stubTransport{noNetwork: true}
	m := newTestManager(t, tr, nil)
	m.Register(1)

	var got State
	err := m.PetitionStart(1, "CID1", func(_ InterfaceID, st State) { got = st })
	if !errors.Is(err, ErrNoNetwork) {
		t.Fatalf("PetitionStart() error = %v, want %v", err, ErrNoNetwork)
	}
	if got != StateNoNetwork {
		t.Errorf("reported state = %v, want %v", got, StateNoNetwork)
	}

	s, _ := m.Session(1)
	if s.State() != SessionRegistered {
		t.Errorf("State() = %v, want %v (must scan and retry)", s.State(), SessionRegistered)
	}
}

func TestPetitionWhileInProgress(t *testing.T) {
	tr := &stubTransport{}
	m := newTestManager(t, tr, nil)
	m.Register(1)
	m.PetitionStart(1, "CID1", nil)

	if err := m.PetitionStart(1, "CID2", nil); !errors.Is(err, ErrPetitionInProgress) {
		t.Errorf("PetitionStart() while pending error = %v, want %v", err, ErrPetitionInProgress)
	}

	tr.petitions[0].done(StateAccept)
	if err := m.PetitionStart(1, "CID2", nil); !errors.Is(err, ErrPetitionInProgress) {
		t.Errorf("PetitionStart() while active error = %v, want %v", err, ErrPetitionInProgress)
	}
}

func TestKeepAliveLifecycle(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	tr := &stubTransport{}
	m := newTestManager(t, tr, clock)
	m.Register(1)

	s, _ := m.Session(1)
	if err := m.PetitionKeepAlive(1, StateAccept); !errors.Is(err, ErrNoPetition) {
		t.Errorf("PetitionKeepAlive() before petition error = %v, want %v", err, ErrNoPetition)
	}

	m.PetitionStart(1, "CID1", nil)
	tr.petitions[0].done(StateAccept)
	firstDeadline := s.keepAliveDeadline

	// Accept re-arms the deadline.
	now = now.Add(30 * time.Second)
	if err := m.PetitionKeepAlive(1, StateAccept); err != nil {
		t.Fatalf("PetitionKeepAlive() error: %v", err)
	}
	tr.keepAlives[0].done(StateAccept)
	if !s.keepAliveDeadline.After(firstDeadline) {
		t.Error("keep-alive accept did not re-arm the deadline")
	}
	if s.State() != SessionActive {
		t.Errorf("State() = %v, want %v", s.State(), SessionActive)
	}

	// Reject ends the session.
	m.PetitionKeepAlive(1, StateAccept)
	tr.keepAlives[1].done(StateReject)
	if s.State() != SessionRejected {
		t.Errorf("State() = %v after keep-alive reject, want %v", s.State(), SessionRejected)
	}
	if s.deadlineArmed {
		t.Error("deadline still armed after reject")
	}
}

func TestUnregisterSuppressesStaleCompletions(t *testing.T) {
	tr := &stubTransport{}
	m := newTestManager(t, tr, nil)
	m.Register(1)

	var reports int
	m.PetitionStart(1, "CID1", func(InterfaceID, State) { reports++ })
	done := tr.petitions[0].done

	m.Unregister(1)
	m.Register(1)

	// The in-flight completion arrives after unregister: it must be a no-op.
	done(StateAccept)

	if reports != 0 {
		t.Errorf("stale completion reported %d times, want 0", reports)
	}
	s, _ := m.Session(1)
	if s.State() != SessionRegistered {
		t.Errorf("State() = %v, want %v", s.State(), SessionRegistered)
	}
}

func TestUnregisterClearsRegistry(t *testing.T) {
	m := newTestManager(t, &stubTransport{}, nil)
	m.Register(1)
	m.DeviceAdd(1, false, eui(1), []byte("abc123"), nil)

	m.Unregister(1)
	m.Register(1)

	next, dev, err := m.DeviceNext(nil, 1)
	if next != nil || dev != nil || err != nil {
		t.Errorf("DeviceNext() = (%v, %v, %v) after unregister, want all nil", next, dev, err)
	}
}

func TestDeviceOpsUnknownInterface(t *testing.T) {
	m := newTestManager(t, &stubTransport{}, nil)

	if err := m.DeviceAdd(5, false, eui(1), []byte("abc"), nil); !errors.Is(err, ErrUnknownInterface) {
		t.Errorf("DeviceAdd() error = %v, want %v", err, ErrUnknownInterface)
	}
	if err := m.DeviceDelete(5, eui(1)); !errors.Is(err, ErrUnknownInterface) {
		t.Errorf("DeviceDelete() error = %v, want %v", err, ErrUnknownInterface)
	}
	if _, _, err := m.DeviceNext(nil, 5); !errors.Is(err, ErrUnknownInterface) {
		t.Errorf("DeviceNext() error = %v, want %v", err, ErrUnknownInterface)
	}
}

func TestSleepBudget(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	tr := &stubTransport{}
	m := newTestManager(t, tr, clock)

	// No sessions: no obligation.
	if _, ok := m.SleepBudget(); ok {
		t.Error("SleepBudget() reports an obligation with no sessions")
	}

	m.Register(1)
	if _, ok := m.SleepBudget(); ok {
		t.Error("SleepBudget() reports an obligation for a registered-only session")
	}

	// A pending petition blocks sleep outright.
	m.PetitionStart(1, "CID1", nil)
	if b, ok := m.SleepBudget(); !ok || b != 0 {
		t.Errorf("SleepBudget() = (%v, %v) while pending, want (0, true)", b, ok)
	}

	// Active with a fresh deadline: budget is the remaining deadline.
	tr.petitions[0].done(StateAccept)
	b, ok := m.SleepBudget()
	if !ok || b != SessionTimeout {
		t.Errorf("SleepBudget() = (%v, %v), want (%v, true)", b, ok, SessionTimeout)
	}

	// Within one keep-alive interval of expiry the budget collapses to zero.
	now = now.Add(SessionTimeout - KeepAliveInterval)
	if b, ok := m.SleepBudget(); !ok || b != 0 {
		t.Errorf("SleepBudget() = (%v, %v) near deadline, want (0, true)", b, ok)
	}
}

func TestSleepBudgetMultipleInterfaces(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	tr := &stubTransport{}
	m := newTestManager(t, tr, clock)

	m.Register(1)
	m.Register(2)
	m.PetitionStart(1, "A", nil)
	m.PetitionStart(2, "B", nil)
	tr.petitions[0].done(StateAccept)
	tr.petitions[1].done(StateAccept)

	// Re-arm iface 2 later so the two deadlines differ.
	now = now.Add(10 * time.Second)
	m.PetitionKeepAlive(2, StateAccept)
	tr.keepAlives[0].done(StateAccept)

	b, ok := m.SleepBudget()
	want := SessionTimeout - 10*time.Second // iface 1 is the tighter deadline
	if !ok || b != want {
		t.Errorf("SleepBudget() = (%v, %v), want (%v, true)", b, ok, want)
	}
}

func TestElapseTime(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	tr := &stubTransport{}
	m := newTestManager(t, tr, clock)
	m.Register(1)
	m.PetitionStart(1, "CID1", nil)
	tr.petitions[0].done(StateAccept)

	m.ElapseTime(30 * time.Second)

	b, ok := m.SleepBudget()
	want := SessionTimeout - 30*time.Second
	if !ok || b != want {
		t.Errorf("SleepBudget() = (%v, %v) after ElapseTime, want (%v, true)", b, ok, want)
	}
}
