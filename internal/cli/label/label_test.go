package label

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weibeld/github-projects-dashboard/internal/cli"
	"github.com/weibeld/github-projects-dashboard/internal/models"
	"github.com/weibeld/github-projects-dashboard/internal/testutil/clitest"
)

func TestCreateLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		checkFunc func(t *testing.T, env *clitest.Env, res clitest.Result)
	}{
		{
			name: "derives text color",
			args: []string{"--title", "bug", "--color", "#ffffff", "--json"},
			checkFunc: func(t *testing.T, env *clitest.Env, res clitest.Result) {
				require.NoError(t, res.Err)
				var got struct {
					Data models.Label `json:"data"`
				}
				require.NoError(t, json.Unmarshal([]byte(res.Stdout), &got))
				assert.Equal(t, "bug", got.Data.Title)
				assert.Equal(t, models.TextColorBlack, got.Data.TextColor)
			},
		},
		{
			name: "attaches to a project by number",
			args: []string{"--title", "talk", "--color", "#0e8a16", "--project", "#3"},
			checkFunc: func(t *testing.T, env *clitest.Env, res clitest.Result) {
				require.NoError(t, res.Err)
				assert.Contains(t, res.Stdout, "Label 'talk' created successfully")
				attached := env.CLI.App.LabelService.LabelsForProject("PVT_mock_3")
				require.Len(t, attached, 1)
				assert.Equal(t, "talk", attached[0].Title)
			},
		},
		{
			name: "duplicate title ignores case",
			args: []string{"--title", "URGENT", "--color", "#000000"},
			checkFunc: func(t *testing.T, env *clitest.Env, res clitest.Result) {
				assert.Equal(t, cli.ExitValidation, cli.ExitCodeFor(res.Err))
				assert.Len(t, env.CLI.App.LabelService.Labels(), 2)
			},
		},
		{
			name: "invalid color",
			args: []string{"--title", "bug", "--color", "red", "--json"},
			checkFunc: func(t *testing.T, env *clitest.Env, res clitest.Result) {
				assert.Equal(t, cli.ExitValidation, cli.ExitCodeFor(res.Err))
				assert.Contains(t, res.Stdout, "VALIDATION_ERROR")
			},
		},
		{
			name: "unknown project",
			args: []string{"--title", "bug", "--color", "#000000", "--project", "#99"},
			checkFunc: func(t *testing.T, env *clitest.Env, res clitest.Result) {
				assert.Equal(t, cli.ExitNotFound, cli.ExitCodeFor(res.Err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := clitest.Setup(t)
			res := env.Run(t, LabelCmd(), "", append([]string{"create"}, tt.args...)...)
			tt.checkFunc(t, env, res)
		})
	}
}

func TestUpdateLabel(t *testing.T) {
	t.Parallel()
	env := clitest.Setup(t)

	res := env.Run(t, LabelCmd(), "", "update", "--id", "urgent", "--title", "blocker", "--color", "#000000")
	require.NoError(t, res.Err)
	assert.Equal(t, "Label 'blocker' updated successfully\n", res.Stdout)

	l, err := cli.ResolveLabel(env.CLI.App.LabelService.Labels(), "lbl-urgent")
	require.NoError(t, err)
	assert.Equal(t, "blocker", l.Title)
	assert.Equal(t, models.TextColorWhite, l.TextColor)

	res = env.Run(t, LabelCmd(), "", "update", "--id", "blocker")
	assert.Equal(t, cli.ExitUsage, cli.ExitCodeFor(res.Err))

	res = env.Run(t, LabelCmd(), "", "update", "--id", "blocker", "--text-color", "grey")
	assert.Equal(t, cli.ExitValidation, cli.ExitCodeFor(res.Err))
}

func TestAttachDetach(t *testing.T) {
	t.Parallel()
	env := clitest.Setup(t)
	svc := env.CLI.App.LabelService

	res := env.Run(t, LabelCmd(), "", "attach", "--label", "urgent", "--project", "CLI tooling")
	require.NoError(t, res.Err)
	assert.Equal(t, "Label 'urgent' attached to 'CLI tooling'\n", res.Stdout)
	assert.Equal(t, 1, svc.ProjectCount("lbl-urgent"))

	// attaching twice is a no-op
	require.NoError(t, env.Run(t, LabelCmd(), "", "attach", "--label", "urgent", "--project", "2").Err)
	assert.Equal(t, 1, svc.ProjectCount("lbl-urgent"))

	res = env.Run(t, LabelCmd(), "", "detach", "--label", "lbl-urgent", "--project", "PVT_mock_2")
	require.NoError(t, res.Err)
	assert.Equal(t, 0, svc.ProjectCount("lbl-urgent"))

	res = env.Run(t, LabelCmd(), "", "attach", "--label", "missing", "--project", "2")
	assert.Equal(t, cli.ExitNotFound, cli.ExitCodeFor(res.Err))
}

func TestDeleteLabel(t *testing.T) {
	t.Parallel()

	t.Run("unused label needs no confirmation", func(t *testing.T) {
		t.Parallel()
		env := clitest.Setup(t)

		res := env.Run(t, LabelCmd(), "", "delete", "--id", "urgent")
		require.NoError(t, res.Err)
		assert.Equal(t, "Label 'urgent' deleted successfully\n", res.Stdout)
		assert.Len(t, env.CLI.App.LabelService.Labels(), 1)
	})

	t.Run("attached label asks first", func(t *testing.T) {
		t.Parallel()
		env := clitest.Setup(t)

		res := env.Run(t, LabelCmd(), "no\n", "delete", "--id", "frontend")
		require.NoError(t, res.Err)
		assert.Contains(t, res.Stdout, "attached to 1 project(s)")
		assert.Contains(t, res.Stdout, "Cancelled")
		assert.Len(t, env.CLI.App.LabelService.Labels(), 2)

		res = env.Run(t, LabelCmd(), "yes\n", "delete", "--id", "frontend")
		require.NoError(t, res.Err)
		assert.Empty(t, env.CLI.App.LabelService.LabelsForProject("PVT_mock_1"))
	})
}

func TestListLabels(t *testing.T) {
	t.Parallel()
	env := clitest.Setup(t)

	res := env.Run(t, LabelCmd(), "", "list", "--json")
	require.NoError(t, res.Err)
	var got struct {
		Data []labelSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &got))
	require.Len(t, got.Data, 2)
	assert.Equal(t, "frontend", got.Data[0].Title)
	assert.Equal(t, 1, got.Data[0].Projects)
	assert.Equal(t, 0, got.Data[1].Projects)

	res = env.Run(t, LabelCmd(), "", "list", "--project", "1", "--quiet")
	require.NoError(t, res.Err)
	assert.Equal(t, "lbl-frontend\n", res.Stdout)

	res = env.Run(t, LabelCmd(), "", "list", "--project", "1", "--available", "--search", "URG", "--quiet")
	require.NoError(t, res.Err)
	assert.Equal(t, "lbl-urgent\n", res.Stdout)
}
