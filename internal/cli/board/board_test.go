package board

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weibeld/github-projects-dashboard/internal/cli"
	"github.com/weibeld/github-projects-dashboard/internal/github"
	"github.com/weibeld/github-projects-dashboard/internal/models"
	"github.com/weibeld/github-projects-dashboard/internal/testutil/clitest"
	"github.com/weibeld/github-projects-dashboard/internal/view"
)

type boardEnvelope struct {
	Success bool       `json:"success"`
	Data    view.Board `json:"data"`
}

func decodeBoard(t *testing.T, out string) view.Board {
	t.Helper()
	var env boardEnvelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	require.True(t, env.Success)
	return env.Data
}

func TestBoardCmd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		checkFunc func(t *testing.T, res clitest.Result)
	}{
		{
			name: "human output lists every column",
			args: []string{"--width", "120"},
			checkFunc: func(t *testing.T, res clitest.Result) {
				require.NoError(t, res.Err)
				for _, s := range []string{"No Status", "Doing", "Closed", "CLI tooling", "frontend"} {
					assert.Contains(t, res.Stdout, s)
				}
			},
		},
		{
			name: "json output",
			args: []string{"--json"},
			checkFunc: func(t *testing.T, res clitest.Result) {
				require.NoError(t, res.Err)
				board := decodeBoard(t, res.Stdout)
				require.Len(t, board.Columns, 3)
				assert.Equal(t, 4, board.CardCount())
				assert.Equal(t, "PVT_mock_2", board.Columns[0].Cards[0].ID)
			},
		},
		{
			name: "filter",
			args: []string{"--json", "--filter", "label:frontend"},
			checkFunc: func(t *testing.T, res clitest.Result) {
				require.NoError(t, res.Err)
				board := decodeBoard(t, res.Stdout)
				assert.Equal(t, 1, board.CardCount())
				require.Len(t, board.Columns[1].Cards, 1)
				assert.Equal(t, "Website redesign", board.Columns[1].Cards[0].Title)
			},
		},
		{
			name: "quiet prints the card count",
			args: []string{"--quiet", "--filter", "closed:false"},
			checkFunc: func(t *testing.T, res clitest.Result) {
				require.NoError(t, res.Err)
				assert.Equal(t, "3\n", res.Stdout)
			},
		},
		{
			name: "raw markdown",
			args: []string{"--markdown", "--raw"},
			checkFunc: func(t *testing.T, res clitest.Result) {
				require.NoError(t, res.Err)
				assert.True(t, strings.HasPrefix(res.Stdout, "# Projects\n"))
				assert.Contains(t, res.Stdout, "## Doing (1)")
				assert.Contains(t, res.Stdout, "~~Conference talk~~")
			},
		},
		{
			name: "invalid filter",
			args: []string{"--json", "--filter", "priority:high"},
			checkFunc: func(t *testing.T, res clitest.Result) {
				assert.Equal(t, cli.ExitValidation, cli.ExitCodeFor(res.Err))
				assert.Contains(t, res.Stdout, `"VALIDATION_ERROR"`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := clitest.Setup(t)
			tt.checkFunc(t, env.Run(t, BoardCmd(), "", tt.args...))
		})
	}
}

func TestMarkdown(t *testing.T) {
	t.Parallel()

	b := view.Board{Columns: []view.Column{
		{Column: models.Column{Title: "Todo"}, Cards: []view.Card{{
			GitHubProject: models.GitHubProject{Title: "Docs", Number: 3, Items: 2, URL: "https://example.com/3"},
			Labels:        []models.Label{{Title: "writing"}},
		}}},
		{Column: models.Column{Title: "Done"}, Cards: []view.Card{}},
	}}

	md := Markdown(b)
	assert.Contains(t, md, "## Todo (1)\n\n- [Docs](https://example.com/3) #3, 2 items `writing`\n")
	assert.Contains(t, md, "## Done (0)\n\n_empty_\n")

	assert.Contains(t, RenderMarkdown(md, 80), "Docs")
}

func TestRenderEmpty(t *testing.T) {
	t.Parallel()
	assert.Contains(t, Render(view.Board{}, 80), "No columns")
}

func TestSyncCmd(t *testing.T) {
	t.Parallel()

	t.Run("new project lands in unassigned", func(t *testing.T) {
		t.Parallel()
		env := clitest.Setup(t)
		projects, err := env.Source.FetchProjects(context.Background(), "")
		require.NoError(t, err)
		env.Source.SetProjects(append(projects, models.GitHubProject{ID: "PVT_mock_5", Number: 5, Title: "Fresh"}))

		res := env.Run(t, SyncCmd(), "")
		require.NoError(t, res.Err)
		assert.Equal(t, "Synced 5 projects across 3 columns\n", res.Stdout)

		board, err := env.CLI.App.Board("number:5")
		require.NoError(t, err)
		require.Len(t, board.Columns[0].Cards, 1)
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()
		env := clitest.Setup(t)
		env.Source.SetError(&github.TransportError{StatusCode: 502})

		res := env.Run(t, SyncCmd(), "", "--json")
		assert.Equal(t, cli.ExitUnavailable, cli.ExitCodeFor(res.Err))
		assert.Contains(t, res.Stdout, `"UNAVAILABLE"`)
	})
}
