package feed

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/viewmodel/internal/errors"
	"github.com/vango-dev/viewmodel/pkg/entity"
	"github.com/vango-dev/viewmodel/pkg/mvvm"
	"github.com/vango-dev/viewmodel/pkg/mvvmtest"
	"github.com/vango-dev/viewmodel/pkg/viewmodel"
)

const sample = `{"id": 7, "type": "group", "title": "Ops", "membersCount": 2, "ownerId": 1, "members": [{"uid": 1}, {"uid": 2}]}

{"id": 8, "type": "channel", "title": "News"}
{"id": 7, "type": "group", "title": "Ops team", "membersCount": 2, "ownerId": 1, "members": [{"uid": 1}, {"uid": 2}]}
`

type fakeS3 struct {
	objects map[string]string
	bucket  string
	key     string
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = *in.Bucket
	f.key = *in.Key
	body, ok := f.objects[f.bucket+"/"+f.key]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestDecoder(t *testing.T) {
	dec := NewDecoder(strings.NewReader(sample))

	var titles []string
	for {
		g, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		titles = append(titles, g.Title)
	}

	want := []string{"Ops", "News", "Ops team"}
	if strings.Join(titles, ",") != strings.Join(want, ",") {
		t.Errorf("titles = %v, want %v", titles, want)
	}
	if dec.Line() != 4 {
		t.Errorf("Line() = %d, want 4", dec.Line())
	}
}

func TestDecoderBadLine(t *testing.T) {
	dec := NewDecoder(strings.NewReader("{\"id\": 1}\n{broken\n"))

	if _, err := dec.Next(); err != nil {
		t.Fatalf("first Next() error = %v", err)
	}
	_, err := dec.Next()
	if !errors.HasCode(err, "E203") {
		t.Fatalf("Next() error = %v, want E203", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q should name line 2", err.Error())
	}
}

func TestDecoderGroupType(t *testing.T) {
	dec := NewDecoder(strings.NewReader(`{"id": 1, "type": "satellite"}`))
	if _, err := dec.Next(); !errors.HasCode(err, "E203") {
		t.Errorf("Next() error = %v, want E203 for unknown type", err)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.jsonl")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatal(err)
	}

	for _, source := range []string{path, "file://" + path} {
		rc, err := Open(context.Background(), source)
		if err != nil {
			t.Fatalf("Open(%q) error = %v", source, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		if string(data) != sample {
			t.Errorf("Open(%q) read %q", source, data)
		}
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.jsonl"))
	if !errors.HasCode(err, "E202") {
		t.Errorf("Open() error = %v, want E202", err)
	}
}

func TestOpenStdin(t *testing.T) {
	rc, err := Open(context.Background(), "-", WithStdin(strings.NewReader("line")))
	if err != nil {
		t.Fatalf("Open(-) error = %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "line" {
		t.Errorf("read %q, want %q", data, "line")
	}
}

func TestOpenS3(t *testing.T) {
	client := &fakeS3{objects: map[string]string{"snapshots/daily/groups.jsonl": sample}}

	rc, err := Open(context.Background(), "s3://snapshots/daily/groups.jsonl", WithS3Client(client))
	if err != nil {
		t.Fatalf("Open(s3) error = %v", err)
	}
	defer rc.Close()

	if client.bucket != "snapshots" || client.key != "daily/groups.jsonl" {
		t.Errorf("GetObject(bucket=%q, key=%q)", client.bucket, client.key)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != sample {
		t.Errorf("read %q", data)
	}
}

func TestOpenS3Errors(t *testing.T) {
	client := &fakeS3{objects: map[string]string{}}

	_, err := Open(context.Background(), "s3://snapshots/missing.jsonl", WithS3Client(client))
	if !errors.HasCode(err, "E202") {
		t.Errorf("missing object error = %v, want E202", err)
	}

	_, err = Open(context.Background(), "s3://snapshots", WithS3Client(client))
	if !errors.HasCode(err, "E201") {
		t.Errorf("missing key error = %v, want E201", err)
	}
}

func TestOpenUnsupported(t *testing.T) {
	for _, source := range []string{"", "https://example.com/groups.jsonl"} {
		_, err := Open(context.Background(), source)
		if !errors.HasCode(err, "E201") {
			t.Errorf("Open(%q) error = %v, want E201", source, err)
		}
	}
}

func newGroupRegistry(d mvvm.Dispatcher) *mvvm.Registry[int32, *entity.Group, *viewmodel.GroupVM] {
	return mvvm.NewRegistry(viewmodel.GroupKey, viewmodel.GroupCreator(d),
		mvvm.WithKind(viewmodel.GroupKind),
		mvvm.WithTracer(noop.NewTracerProvider().Tracer("test")),
	)
}

func applyTo(reg *mvvm.Registry[int32, *entity.Group, *viewmodel.GroupVM]) ApplyFunc {
	return func(ctx context.Context, g *entity.Group) bool {
		_, created := reg.Apply(ctx, g)
		return created
	}
}

func TestReplay(t *testing.T) {
	d := mvvmtest.NewManualDispatcher()
	reg := newGroupRegistry(d)

	stats, err := Replay(context.Background(), strings.NewReader(sample), applyTo(reg),
		WithTracer(noop.NewTracerProvider().Tracer("test")))
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	if stats != (Stats{Snapshots: 3, Created: 2, Updated: 1}) {
		t.Errorf("Stats = %+v", stats)
	}
	if reg.Len() != 2 {
		t.Errorf("registry Len() = %d, want 2", reg.Len())
	}

	vm, ok := reg.Get(7)
	if !ok {
		t.Fatal("group 7 not created")
	}
	if got := vm.Name().Value(); got != "Ops team" {
		t.Errorf("Name() = %q, want %q", got, "Ops team")
	}

	// Only the title change schedules a notification.
	if d.Len() != 1 {
		t.Errorf("posted tasks = %d, want 1", d.Len())
	}
}

func TestReplayStopsAtBadLine(t *testing.T) {
	reg := newGroupRegistry(mvvmtest.NewManualDispatcher())
	input := "{\"id\": 1}\nnot json\n{\"id\": 2}\n"

	stats, err := Replay(context.Background(), strings.NewReader(input), applyTo(reg))
	if !errors.HasCode(err, "E203") {
		t.Fatalf("Replay() error = %v, want E203", err)
	}
	if stats.Snapshots != 1 || reg.Len() != 1 {
		t.Errorf("Stats = %+v, Len = %d; want the first snapshot applied", stats, reg.Len())
	}
}

func TestReplayCancelled(t *testing.T) {
	reg := newGroupRegistry(mvvmtest.NewManualDispatcher())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := Replay(ctx, strings.NewReader(sample), applyTo(reg))
	if err != context.Canceled {
		t.Errorf("Replay() error = %v, want context.Canceled", err)
	}
	if stats.Snapshots != 0 {
		t.Errorf("Snapshots = %d, want 0", stats.Snapshots)
	}
}
