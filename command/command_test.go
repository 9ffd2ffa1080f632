package command_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dkrizic/memorylove/command"
	"github.com/dkrizic/memorylove/command/create"
	"github.com/dkrizic/memorylove/command/delete"
	"github.com/dkrizic/memorylove/command/generateid"
	"github.com/dkrizic/memorylove/command/get"
	"github.com/dkrizic/memorylove/command/getall"
	"github.com/dkrizic/memorylove/command/qr"
	"github.com/dkrizic/memorylove/constant"
	"github.com/dkrizic/memorylove/service"
	"github.com/dkrizic/memorylove/service/memory"
	"github.com/dkrizic/memorylove/service/persistence"
	"github.com/dkrizic/memorylove/service/persistence/inmemory"
	"github.com/dkrizic/memorylove/service/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func newBackend(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	tmpl := service.ParseTemplates(context.Background())
	require.NotNil(t, tmpl)
	store := memory.New(inmemory.NewPersistence())
	ts := httptest.NewServer(service.NewServer(store, tmpl, service.Config{}).Router())
	t.Cleanup(ts.Close)
	return ts, store
}

func idArg() []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: constant.ID}}
}

func newApp(out *bytes.Buffer) *cli.Command {
	return &cli.Command{
		Name:   "memorylove",
		Writer: out,
		Flags:  command.ConnectionFlags(),
		Commands: []*cli.Command{
			{
				Name:   "create",
				Action: create.Create,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: constant.Title},
					&cli.StringFlag{Name: constant.Message},
					&cli.StringSliceFlag{Name: constant.Photo},
					&cli.StringFlag{Name: constant.Music},
					&cli.StringFlag{Name: constant.Slug},
				},
			},
			{Name: "get", Action: get.Get, Arguments: idArg()},
			{Name: "getall", Action: getall.GetAll},
			{Name: "delete", Action: delete.Delete, Arguments: idArg()},
			{Name: "generate-id", Action: generateid.GenerateID},
			{
				Name:      "qr",
				Action:    qr.QR,
				Arguments: idArg(),
				Flags:     []cli.Flag{&cli.StringFlag{Name: constant.Out}},
			},
		},
	}
}

func run(t *testing.T, endpoint string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(context.Background(), append([]string{"memorylove", "--endpoint", endpoint}, args...))
	return out.String(), err
}

func TestGenerateID(t *testing.T) {
	out, err := run(t, "http://127.0.0.1:1", "generate-id")

	require.NoError(t, err)
	assert.Regexp(t, `^[a-z0-9]+\n$`, out)
}

func TestCreate(t *testing.T) {
	ts, store := newBackend(t)
	png, err := viewer.QRCode("photo", 64)
	require.NoError(t, err)
	photo := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(photo, png, 0o644))

	out, err := run(t, ts.URL, "create",
		"--title", "Nosso Dia",
		"--message", "Te amo",
		"--photo", photo,
		"--photo", "https://example.com/b.jpg",
		"--slug", "Nosso Dia",
	)

	require.NoError(t, err)
	assert.Equal(t, "nossodia\n"+ts.URL+"/memory/nossodia\n", out)

	r, found, err := store.Get(context.Background(), "nossodia")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, r.Photos, 2)
	assert.True(t, strings.HasPrefix(r.Photos[0], "data:image/png;base64,"))
	assert.Equal(t, "https://example.com/b.jpg", r.Photos[1])
}

func TestCreate_Incomplete(t *testing.T) {
	ts, store := newBackend(t)

	_, err := run(t, ts.URL, "create", "--title", "T", "--message", "M")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one photo is required")
	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreate_MissingPhotoFile(t *testing.T) {
	ts, _ := newBackend(t)

	_, err := run(t, ts.URL, "create", "--title", "T", "--message", "M", "--photo", filepath.Join(t.TempDir(), "nope.png"))

	assert.Error(t, err)
}

func TestGetGetAllDelete(t *testing.T) {
	ts, store := newBackend(t)
	ctx := context.Background()
	for _, id := range []string{"b", "a"} {
		_, err := store.Save(ctx, id, persistence.Data{Title: "Title " + id, Message: "M", Photos: []string{"p"}})
		require.NoError(t, err)
	}

	out, err := run(t, ts.URL, "get", "a")
	require.NoError(t, err)
	var r persistence.Record
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "Title a", r.Title)

	out, err = run(t, ts.URL, "getall")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "a\t"))
	assert.True(t, strings.HasSuffix(lines[1], "\tTitle b"))

	_, err = run(t, ts.URL, "delete", "a")
	require.NoError(t, err)

	_, err = run(t, ts.URL, "get", "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMissingID(t *testing.T) {
	for _, name := range []string{"get", "delete", "qr"} {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, "http://127.0.0.1:1", name)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "missing memory id")
		})
	}
}

func TestQR(t *testing.T) {
	ts, store := newBackend(t)
	_, err := store.Save(context.Background(), "qr", persistence.Data{Title: "T", Message: "M", Photos: []string{"p"}})
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "code.png")

	out, err := run(t, ts.URL, "qr", "--out", file, "qr")

	require.NoError(t, err)
	assert.Equal(t, file+"\n", out)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(data[:4]))
}

func TestUnreachable(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1", "getall")

	assert.Error(t, err)
}
