package stats

import (
	"testing"
	"time"

	"optime/internal/eventlog"
)

// sessionActivity returns observer activity ticks every 5 minutes across
// [from, to), well within a 10-minute threshold.
func sessionActivity(from, to time.Time) []time.Time {
	var out []time.Time
	for t := from; !t.After(to); t = t.Add(5 * time.Minute) {
		out = append(out, t)
	}
	return out
}

func online(t time.Time, user string) eventlog.PresenceEvent {
	return eventlog.PresenceEvent{CreatedAt: t, UserID: user, DisplayName: user, Kind: eventlog.Online}
}

func offline(t time.Time, user string) eventlog.PresenceEvent {
	return eventlog.PresenceEvent{CreatedAt: t, UserID: user, DisplayName: user, Kind: eventlog.Offline}
}

func runProcessor(t *testing.T, opts Options, activity []time.Time, presence []eventlog.PresenceEvent) (*Grid, *Processor) {
	t.Helper()
	grid := testGrid(30)
	proc := NewProcessor(grid, opts)
	if err := proc.Run(activity, presence); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return grid, proc
}

func TestProcessor_CountsClampedInterval(t *testing.T) {
	activity := sessionActivity(at(18, 0), at(20, 0))
	presence := []eventlog.PresenceEvent{
		online(at(18, 30), "usr_a"),
		offline(at(19, 0), "usr_a"),
	}
	grid, proc := runProcessor(t, Options{Threshold: 10 * time.Minute}, activity, presence)

	// [18:30, 19:00) touches exactly the 18:30 bucket.
	if got := grid.Cell(0, 37).OnlineCount; got != 1 {
		t.Errorf("Monday 18:30 bucket = %d, want 1", got)
	}
	if proc.Dropped() != 0 {
		t.Errorf("dropped = %d, want 0", proc.Dropped())
	}
}

func TestProcessor_OnlineOverwritesOnline(t *testing.T) {
	activity := sessionActivity(at(18, 0), at(20, 0))
	presence := []eventlog.PresenceEvent{
		online(at(18, 10), "usr_a"),
		online(at(18, 40), "usr_a"), // replaces the 18:10 sighting
		offline(at(19, 0), "usr_a"),
	}
	grid, _ := runProcessor(t, Options{Threshold: 10 * time.Minute}, activity, presence)

	if got := grid.Cell(0, 36).OnlineCount; got != 0 {
		t.Errorf("Monday 18:00 bucket = %d, want 0 (first Online discarded)", got)
	}
	if got := grid.Cell(0, 37).OnlineCount; got != 1 {
		t.Errorf("Monday 18:30 bucket = %d, want 1", got)
	}
}

func TestProcessor_OfflineWithoutOnlineIgnored(t *testing.T) {
	activity := sessionActivity(at(18, 0), at(20, 0))
	presence := []eventlog.PresenceEvent{
		offline(at(19, 0), "usr_a"),
	}
	grid, _ := runProcessor(t, Options{Threshold: 10 * time.Minute}, activity, presence)

	for bucket := 0; bucket < grid.BucketsPerDay(); bucket++ {
		if grid.Cell(0, bucket).OnlineCount != 0 {
			t.Fatalf("bucket %d has counts from an unpaired Offline", bucket)
		}
	}
}

func TestProcessor_DropsIntervalOutsideUptime(t *testing.T) {
	activity := sessionActivity(at(18, 0), at(20, 0))
	presence := []eventlog.PresenceEvent{
		online(at(21, 0), "usr_a"),
		offline(at(21, 30), "usr_a"),
	}
	grid, proc := runProcessor(t, Options{Threshold: 10 * time.Minute}, activity, presence)

	if proc.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", proc.Dropped())
	}
	for bucket := 0; bucket < grid.BucketsPerDay(); bucket++ {
		if grid.Cell(0, bucket).OnlineCount != 0 {
			t.Fatalf("bucket %d has counts from a dropped interval", bucket)
		}
	}
}

func TestProcessor_FriendAllowlist(t *testing.T) {
	activity := sessionActivity(at(18, 0), at(20, 0))
	presence := []eventlog.PresenceEvent{
		online(at(18, 30), "usr_a"),
		offline(at(19, 0), "usr_a"),
		online(at(18, 30), "usr_b"),
		offline(at(19, 0), "usr_b"),
	}
	opts := Options{
		Threshold: 10 * time.Minute,
		FriendIDs: map[string]struct{}{"usr_b": {}},
	}
	grid, _ := runProcessor(t, opts, activity, presence)

	if got := grid.Cell(0, 37).OnlineCount; got != 1 {
		t.Errorf("Monday 18:30 bucket = %d, want 1 (only usr_b allowed)", got)
	}
}

func TestProcessor_StartTimeFilter(t *testing.T) {
	activity := sessionActivity(at(18, 0), at(20, 0))
	presence := []eventlog.PresenceEvent{
		online(at(18, 30), "usr_a"),
		offline(at(19, 0), "usr_a"),
	}
	// The Online leg predates the filter, so the pair never forms.
	opts := Options{Threshold: 10 * time.Minute, StartTime: at(18, 45)}
	grid, proc := runProcessor(t, opts, activity, presence)

	if got := grid.Cell(0, 37).OnlineCount; got != 0 {
		t.Errorf("Monday 18:30 bucket = %d, want 0", got)
	}
	if proc.Dropped() != 0 {
		t.Errorf("dropped = %d, want 0", proc.Dropped())
	}
}

func TestProcessor_NegativeIntervalIsFatal(t *testing.T) {
	activity := sessionActivity(at(18, 0), at(20, 0))
	presence := []eventlog.PresenceEvent{
		online(at(19, 0), "usr_a"),
		offline(at(18, 30), "usr_a"),
	}
	proc := NewProcessor(testGrid(30), Options{Threshold: 10 * time.Minute})
	if err := proc.Run(activity, presence); err == nil {
		t.Fatal("expected error for a negative presence interval")
	}
}

func TestProcessor_SplitIntervalCountsBothEnds(t *testing.T) {
	// Two sessions with a dead gap between them.
	activity := append(sessionActivity(at(18, 0), at(19, 0)), sessionActivity(at(21, 0), at(22, 0))...)
	presence := []eventlog.PresenceEvent{
		online(at(18, 40), "usr_a"),
		offline(at(21, 20), "usr_a"),
	}
	grid, _ := runProcessor(t, Options{Threshold: 10 * time.Minute}, activity, presence)

	// Head [18:40, 19:00) and tail [21:00, 21:20) both count; the outage
	// in between does not.
	if got := grid.Cell(0, 37).OnlineCount; got != 1 {
		t.Errorf("Monday 18:30 bucket = %d, want 1 (head)", got)
	}
	if got := grid.Cell(0, 42).OnlineCount; got != 1 {
		t.Errorf("Monday 21:00 bucket = %d, want 1 (tail)", got)
	}
	for _, bucket := range []int{39, 40, 41} {
		if got := grid.Cell(0, bucket).OnlineCount; got != 0 {
			t.Errorf("Monday bucket %d = %d, want 0 (observer outage)", bucket, got)
		}
	}
}
