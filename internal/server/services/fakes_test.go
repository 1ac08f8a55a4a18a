package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/dbx"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/collaborators"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/comments"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/conversations"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/documents"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/invitations"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/issues"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/links"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/projects"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/users"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/views"
)

var fakeNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeManager struct {
	users         *fakeUsersRepo
	projects      *fakeProjectsRepo
	collaborators *fakeCollaboratorsRepo
	invitations   *fakeInvitationsRepo
	views         *fakeViewsRepo
	issues        *fakeIssuesRepo
	comments      *fakeCommentsRepo
	documents     *fakeDocumentsRepo
	links         *fakeLinksRepo
	conversations *fakeConversationsRepo
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		users:         &fakeUsersRepo{rows: map[string]*models.User{}},
		projects:      &fakeProjectsRepo{rows: map[string]*models.Project{}},
		collaborators: &fakeCollaboratorsRepo{rows: map[string]*models.ProjectCollaborator{}},
		invitations:   &fakeInvitationsRepo{rows: map[string]*models.Invitation{}},
		views:         &fakeViewsRepo{rows: map[string]*models.View{}},
		issues:        &fakeIssuesRepo{rows: map[string]*models.Issue{}},
		comments:      &fakeCommentsRepo{},
		documents:     &fakeDocumentsRepo{rows: map[string]*models.Document{}},
		links:         &fakeLinksRepo{rows: map[string]*models.Link{}},
		conversations: &fakeConversationsRepo{convs: map[string]*models.AIConversation{}},
	}
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeManager) Projects(dbx.DBTX) projects.Repository           { return m.projects }
func (m *fakeManager) Collaborators(dbx.DBTX) collaborators.Repository { return m.collaborators }
func (m *fakeManager) Invitations(dbx.DBTX) invitations.Repository     { return m.invitations }
func (m *fakeManager) Views(dbx.DBTX) views.Repository                 { return m.views }
func (m *fakeManager) Issues(dbx.DBTX) issues.Repository               { return m.issues }
func (m *fakeManager) Comments(dbx.DBTX) comments.Repository           { return m.comments }
func (m *fakeManager) Documents(dbx.DBTX) documents.Repository         { return m.documents }
func (m *fakeManager) Links(dbx.DBTX) links.Repository                 { return m.links }
func (m *fakeManager) Conversations(dbx.DBTX) conversations.Repository { return m.conversations }

// users

type fakeUsersRepo struct {
	rows      map[string]*models.User
	createErr error
	getErr    error
}

func (r *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, x := range r.rows {
		if x.WalletAddress == u.WalletAddress || x.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.CreatedAt, u.UpdatedAt = fakeNow, fakeNow
	cp := *u
	r.rows[u.ID] = &cp
	return u, nil
}

func (r *fakeUsersRepo) find(match func(*models.User) bool) (*models.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, u := range r.rows {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *fakeUsersRepo) GetByWallet(_ context.Context, w string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return strings.EqualFold(u.WalletAddress, w) })
}

func (r *fakeUsersRepo) GetByEmail(_ context.Context, e string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return strings.EqualFold(u.Email, e) })
}

func (r *fakeUsersRepo) SetEncryptedAPIKey(_ context.Context, id string, token *string) error {
	u, ok := r.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.EncryptedAPIKey = token
	return nil
}

// projects

type fakeProjectsRepo struct {
	rows map[string]*models.Project
}

func (r *fakeProjectsRepo) Create(_ context.Context, p *models.Project) (*models.Project, error) {
	p.CreatedAt, p.UpdatedAt = fakeNow, fakeNow
	cp := *p
	r.rows[p.ID] = &cp
	return p, nil
}

func (r *fakeProjectsRepo) GetByID(_ context.Context, id string) (*models.Project, error) {
	p, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProjectsRepo) ListForUser(_ context.Context, userID string) ([]*models.Project, error) {
	var out []*models.Project
	for _, p := range r.rows {
		if p.OwnerID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProjectsRepo) Update(_ context.Context, id, name, description string) (*models.Project, error) {
	p, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p.Name, p.Description = name, description
	cp := *p
	return &cp, nil
}

func (r *fakeProjectsRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.rows, id)
	return nil
}

// collaborators

type fakeCollaboratorsRepo struct {
	rows   map[string]*models.ProjectCollaborator
	addErr error
}

func collabKey(projectID, userID string) string { return projectID + "/" + userID }

func (r *fakeCollaboratorsRepo) Add(_ context.Context, c *models.ProjectCollaborator) error {
	if r.addErr != nil {
		return r.addErr
	}
	k := collabKey(c.ProjectID, c.UserID)
	if _, ok := r.rows[k]; ok {
		return common.ErrorAlreadyExists
	}
	cp := *c
	r.rows[k] = &cp
	return nil
}

func (r *fakeCollaboratorsRepo) Get(_ context.Context, projectID, userID string) (*models.ProjectCollaborator, error) {
	c, ok := r.rows[collabKey(projectID, userID)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCollaboratorsRepo) List(_ context.Context, projectID string) ([]*models.ProjectCollaborator, error) {
	var out []*models.ProjectCollaborator
	for _, c := range r.rows {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCollaboratorsRepo) Remove(_ context.Context, projectID, userID string) error {
	k := collabKey(projectID, userID)
	if _, ok := r.rows[k]; !ok {
		return common.ErrorNotFound
	}
	delete(r.rows, k)
	return nil
}

// invitations

type fakeInvitationsRepo struct {
	rows       map[string]*models.Invitation
	createHook func(*models.Invitation) error
	// acceptHook runs before MarkAccepted checks the row, standing in for a
	// concurrent writer.
	acceptHook func(*models.Invitation)
	expired    []string
}

func (r *fakeInvitationsRepo) Create(_ context.Context, inv *models.Invitation) (*models.Invitation, error) {
	if r.createHook != nil {
		if err := r.createHook(inv); err != nil {
			return nil, err
		}
	}
	inv.CreatedAt = fakeNow
	cp := *inv
	r.rows[inv.ID] = &cp
	return inv, nil
}

func (r *fakeInvitationsRepo) GetByID(_ context.Context, id string) (*models.Invitation, error) {
	inv, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvitationsRepo) GetWithProject(ctx context.Context, id string) (*models.InvitationWithProject, error) {
	inv, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.InvitationWithProject{Invitation: *inv, ProjectName: "Project " + inv.ProjectID}, nil
}

func (r *fakeInvitationsRepo) FindPending(_ context.Context, projectID, email string) (*models.Invitation, error) {
	for _, inv := range r.rows {
		if inv.ProjectID == projectID && strings.EqualFold(inv.Email, email) && inv.Status == models.InvitationPending {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeInvitationsRepo) sorted(match func(*models.Invitation) bool) []*models.Invitation {
	var out []*models.Invitation
	for _, inv := range r.rows {
		if match(inv) {
			cp := *inv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeInvitationsRepo) ListPendingByEmail(_ context.Context, email string) ([]*models.Invitation, error) {
	return r.sorted(func(inv *models.Invitation) bool {
		return strings.EqualFold(inv.Email, email) && inv.Status == models.InvitationPending
	}), nil
}

func (r *fakeInvitationsRepo) ListByProject(_ context.Context, projectID string) ([]*models.Invitation, error) {
	return r.sorted(func(inv *models.Invitation) bool { return inv.ProjectID == projectID }), nil
}

func (r *fakeInvitationsRepo) MarkExpired(_ context.Context, id string) error {
	if inv, ok := r.rows[id]; ok && inv.Status == models.InvitationPending {
		inv.Status = models.InvitationExpired
		r.expired = append(r.expired, id)
	}
	return nil
}

func (r *fakeInvitationsRepo) MarkAccepted(_ context.Context, id string, at time.Time) error {
	inv, ok := r.rows[id]
	if ok && r.acceptHook != nil {
		r.acceptHook(inv)
	}
	if !ok || inv.Status != models.InvitationPending {
		return common.ErrorNotFound
	}
	inv.Status = models.InvitationAccepted
	inv.AcceptedAt = &at
	return nil
}

func (r *fakeInvitationsRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.rows, id)
	return nil
}

// views

type fakeViewsRepo struct {
	rows map[string]*models.View
}

func (r *fakeViewsRepo) Create(_ context.Context, v *models.View) (*models.View, error) {
	v.CreatedAt = fakeNow
	cp := *v
	r.rows[v.ID] = &cp
	return v, nil
}

func (r *fakeViewsRepo) GetByID(_ context.Context, id string) (*models.View, error) {
	v, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeViewsRepo) ListByProject(_ context.Context, projectID string) ([]*models.View, error) {
	var out []*models.View
	for _, v := range r.rows {
		if v.ProjectID == projectID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeViewsRepo) Delete(_ context.Context, id string) error {
	delete(r.rows, id)
	return nil
}

// issues

type fakeIssuesRepo struct {
	rows       map[string]*models.Issue
	lastFilter models.IssueFilter
}

func (r *fakeIssuesRepo) Create(_ context.Context, i *models.Issue) (*models.Issue, error) {
	i.CreatedAt, i.UpdatedAt = fakeNow, fakeNow
	cp := *i
	r.rows[i.ID] = &cp
	return i, nil
}

func (r *fakeIssuesRepo) GetByID(_ context.Context, id string) (*models.Issue, error) {
	i, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *i
	return &cp, nil
}

func (r *fakeIssuesRepo) List(_ context.Context, f models.IssueFilter) ([]*models.Issue, error) {
	r.lastFilter = f
	var out []*models.Issue
	for _, i := range r.rows {
		if i.ViewID == f.ViewID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *fakeIssuesRepo) Update(_ context.Context, id string, p models.IssuePatch) (*models.Issue, error) {
	i, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if p.Title != nil {
		i.Title = *p.Title
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.Status != nil {
		i.Status = *p.Status
	}
	if p.Priority != nil {
		i.Priority = *p.Priority
	}
	cp := *i
	return &cp, nil
}

func (r *fakeIssuesRepo) Delete(_ context.Context, id string) error {
	delete(r.rows, id)
	return nil
}

// comments

type fakeCommentsRepo struct {
	rows []*models.Comment
}

func (r *fakeCommentsRepo) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	c.CreatedAt = fakeNow
	r.rows = append(r.rows, c)
	return c, nil
}

func (r *fakeCommentsRepo) ListByIssue(_ context.Context, issueID string) ([]*models.Comment, error) {
	var out []*models.Comment
	for _, c := range r.rows {
		if c.IssueID == issueID {
			out = append(out, c)
		}
	}
	return out, nil
}

// documents

type fakeDocumentsRepo struct {
	rows      map[string]*models.Document
	createErr error
}

func (r *fakeDocumentsRepo) Create(_ context.Context, d *models.Document) (*models.Document, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	d.CreatedAt = fakeNow
	cp := *d
	r.rows[d.ID] = &cp
	return d, nil
}

func (r *fakeDocumentsRepo) GetByID(_ context.Context, id string) (*models.Document, error) {
	d, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDocumentsRepo) ListByContext(_ context.Context, ref models.ContextRef) ([]*models.Document, error) {
	var out []*models.Document
	for _, d := range r.rows {
		if d.Context == ref {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDocumentsRepo) Delete(_ context.Context, id string) error {
	delete(r.rows, id)
	return nil
}

// links

type fakeLinksRepo struct {
	rows map[string]*models.Link
}

func (r *fakeLinksRepo) Create(_ context.Context, l *models.Link) (*models.Link, error) {
	l.CreatedAt = fakeNow
	cp := *l
	r.rows[l.ID] = &cp
	return l, nil
}

func (r *fakeLinksRepo) GetByID(_ context.Context, id string) (*models.Link, error) {
	l, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLinksRepo) ListByContext(_ context.Context, ref models.ContextRef) ([]*models.Link, error) {
	var out []*models.Link
	for _, l := range r.rows {
		if l.Context == ref {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLinksRepo) Delete(_ context.Context, id string) error {
	delete(r.rows, id)
	return nil
}

// conversations

type fakeConversationsRepo struct {
	convs    map[string]*models.AIConversation
	messages []*models.AIMessage
}

func convKey(ref models.ContextRef, userID string) string { return ref.String() + "/" + userID }

func (r *fakeConversationsRepo) GetOrCreate(_ context.Context, c *models.AIConversation) (*models.AIConversation, error) {
	k := convKey(c.Context, c.UserID)
	if existing, ok := r.convs[k]; ok {
		return existing, nil
	}
	c.CreatedAt = fakeNow
	r.convs[k] = c
	return c, nil
}

func (r *fakeConversationsRepo) Find(_ context.Context, ref models.ContextRef, userID string) (*models.AIConversation, error) {
	c, ok := r.convs[convKey(ref, userID)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (r *fakeConversationsRepo) AppendMessage(_ context.Context, m *models.AIMessage) error {
	m.CreatedAt = fakeNow
	r.messages = append(r.messages, m)
	return nil
}

func (r *fakeConversationsRepo) ListMessages(_ context.Context, conversationID string) ([]*models.AIMessage, error) {
	out := []*models.AIMessage{}
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeConversationsRepo) ClearMessages(_ context.Context, conversationID string) error {
	kept := r.messages[:0]
	for _, m := range r.messages {
		if m.ConversationID != conversationID {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

// seeding helpers

func (m *fakeManager) addUser(id, email, wallet string) *models.User {
	u := &models.User{ID: id, Email: email, WalletAddress: wallet, CreatedAt: fakeNow, UpdatedAt: fakeNow}
	m.users.rows[id] = u
	return u
}

func (m *fakeManager) addProject(id, ownerID string) *models.Project {
	p := &models.Project{ID: id, Name: "Project " + id, OwnerID: ownerID, CreatedAt: fakeNow, UpdatedAt: fakeNow}
	m.projects.rows[id] = p
	return p
}

func (m *fakeManager) addCollaborator(projectID, userID string, role models.Role) {
	m.collaborators.rows[collabKey(projectID, userID)] = &models.ProjectCollaborator{
		ProjectID: projectID, UserID: userID, Role: role, InvitedAt: fakeNow,
	}
}
