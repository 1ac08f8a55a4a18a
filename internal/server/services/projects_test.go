package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/logging"
	"github.com/dmitrijs2005/slothapp/internal/rbac"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProjectFixture(t *testing.T) (*ProjectService, *fakeManager) {
	t.Helper()
	m := newFakeManager()
	m.addProject("p1", "owner")
	m.addCollaborator("p1", "ed", models.RoleEditor)
	m.addCollaborator("p1", "vi", models.RoleViewer)
	return NewProjectService(nil, m, logging.Nop()), m
}

func TestProjectService_RoleFor(t *testing.T) {
	svc, m := newProjectFixture(t)
	ctx := context.Background()
	m.addCollaborator("p1", "odd", models.Role("superuser"))

	for user, want := range map[string]models.Role{
		"owner": models.RoleOwner,
		"ed":    models.RoleEditor,
		"vi":    models.RoleViewer,
		"odd":   models.RoleViewer,
	} {
		role, err := svc.RoleFor(ctx, "p1", user)
		require.NoError(t, err, user)
		assert.Equal(t, want, role, user)
	}

	_, err := svc.RoleFor(ctx, "p1", "stranger")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	_, err = svc.RoleFor(ctx, "nope", "owner")
	assert.ErrorIs(t, err, common.ErrProjectNotFound)
}

func TestProjectService_Authorize(t *testing.T) {
	svc, _ := newProjectFixture(t)
	ctx := context.Background()

	_, _, err := svc.Authorize(ctx, "p1", "vi", rbac.ActionRead)
	assert.NoError(t, err)
	_, _, err = svc.Authorize(ctx, "p1", "vi", rbac.ActionWrite)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	_, _, err = svc.Authorize(ctx, "p1", "ed", rbac.ActionAdmin)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	_, role, err := svc.Authorize(ctx, "p1", "owner", rbac.ActionAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, role)
}

func TestProjectService_CRUD(t *testing.T) {
	svc, m := newProjectFixture(t)
	ctx := context.Background()

	_, err := svc.CreateProject(ctx, "u1", "   ", "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	p, err := svc.CreateProject(ctx, "u1", " Roadmap ", " Q3 ")
	require.NoError(t, err)
	assert.Equal(t, "Roadmap", p.Name)
	assert.Equal(t, "Q3", p.Description)
	assert.Equal(t, "u1", p.OwnerID)

	list, err := svc.ListProjects(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got, err := svc.GetProject(ctx, p.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	upd, err := svc.UpdateProject(ctx, p.ID, "u1", "Roadmap 2", "")
	require.NoError(t, err)
	assert.Equal(t, "Roadmap 2", upd.Name)

	assert.ErrorIs(t, svc.DeleteProject(ctx, "p1", "ed"), common.ErrUnauthorized)
	require.NoError(t, svc.DeleteProject(ctx, p.ID, "u1"))
	assert.NotContains(t, m.projects.rows, p.ID)
}

func TestProjectService_Collaborators(t *testing.T) {
	svc, m := newProjectFixture(t)
	ctx := context.Background()

	list, err := svc.ListCollaborators(ctx, "p1", "vi")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	assert.ErrorIs(t, svc.RemoveCollaborator(ctx, "p1", "ed", "vi"), common.ErrUnauthorized)
	assert.ErrorIs(t, svc.RemoveCollaborator(ctx, "p1", "owner", "owner"), common.ErrInvalidInput)
	require.NoError(t, svc.RemoveCollaborator(ctx, "p1", "owner", "vi"))
	assert.NotContains(t, m.collaborators.rows, collabKey("p1", "vi"))
	assert.ErrorIs(t, svc.RemoveCollaborator(ctx, "p1", "owner", "vi"), common.ErrUserNotFound)
}

func TestProjectService_ViewsAndContexts(t *testing.T) {
	svc, m := newProjectFixture(t)
	ctx := context.Background()

	_, err := svc.CreateView(ctx, "p1", "vi", "Board")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	v, err := svc.CreateView(ctx, "p1", "ed", "Board")
	require.NoError(t, err)
	views, err := svc.ListViews(ctx, "p1", "vi")
	require.NoError(t, err)
	assert.Len(t, views, 1)

	m.issues.rows["i1"] = &models.Issue{ID: "i1", ProjectID: "p1", ViewID: v.ID}

	for _, ref := range []models.ContextRef{
		{Type: models.ContextProject, ID: "p1"},
		{Type: models.ContextView, ID: v.ID},
		{Type: models.ContextIssue, ID: "i1"},
	} {
		pid, err := svc.ResolveContext(ctx, ref)
		require.NoError(t, err, ref.String())
		assert.Equal(t, "p1", pid)
	}

	_, err = svc.ResolveContext(ctx, models.ContextRef{Type: models.ContextIssue, ID: "zzz"})
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.ResolveContext(ctx, models.ContextRef{Type: "note", ID: "x"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = svc.AuthorizeContext(ctx, models.ContextRef{Type: models.ContextView, ID: v.ID}, "stranger", rbac.ActionRead)
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	require.NoError(t, svc.DeleteView(ctx, v.ID, "ed"))
	assert.ErrorIs(t, svc.DeleteView(ctx, v.ID, "ed"), common.ErrNotFound)
}
