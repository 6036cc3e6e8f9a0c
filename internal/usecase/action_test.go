package usecase

import (
	"context"
	"testing"

	"cv-site/internal/domain"
	"cv-site/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldPath(t *testing.T) {
	tests := []struct {
		in   string
		want FieldPath
	}{
		{"personalInfo.name", FieldPath{Kind: domain.KindPersonalInfo, Field: "name"}},
		{"personalInfo.leadershipPoints.2", FieldPath{Kind: domain.KindPersonalInfo, List: model.LeadershipPoints, Index: 2}},
		{"personalInfo.productPortfolio.0.title", FieldPath{Kind: domain.KindPersonalInfo, List: model.ProductPortfolio, Field: "title"}},
		{"personalInfo.expertiseAreas.1.skills", FieldPath{Kind: domain.KindPersonalInfo, List: model.ExpertiseAreas, Index: 1, Field: "skills"}},
		{"workExperience.3.company", FieldPath{Kind: domain.KindWorkExperience, Index: 3, Field: "company"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFieldPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestParseFieldPathRejects(t *testing.T) {
	for _, in := range []string{
		"",
		"resume.name",
		"skills.name",
		"skills.x.name",
		"skills.0.name.extra",
		"personalInfo.leadershipPoints",
		"personalInfo.leadershipPoints.0.text",
		"personalInfo.productPortfolio.0",
		"personalInfo.expertiseAreas.0.level",
		"personalInfo.hobbies.0",
	} {
		_, err := ParseFieldPath(in)
		assert.ErrorIs(t, err, ErrInvalidPath, in)
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
	}{
		{"edit", Action{Op: OpEdit}},
		{"reload", Action{Op: OpReload}},
		{"save:personalInfo", Action{Op: OpSave, Kind: domain.KindPersonalInfo}},
		{"save:education:2", Action{Op: OpSave, Kind: domain.KindEducation, Index: 2}},
		{"create:languages", Action{Op: OpCreate, Kind: domain.KindLanguages}},
		{"delete:skills:7", Action{Op: OpDelete, Kind: domain.KindSkills, ID: 7}},
		{"add:productPortfolio", Action{Op: OpAdd, List: model.ProductPortfolio}},
		{"remove:leadershipPoints:1", Action{Op: OpRemove, List: model.LeadershipPoints, Index: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAction(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}

	for _, in := range []string{"", "save", "save:skills", "save:personalInfo:0", "create:personalInfo", "delete:skills", "delete:skills:x", "remove:leadershipPoints", "publish"} {
		_, err := ParseAction(in)
		assert.Error(t, err, in)
	}
}

func TestActionApplyMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("save personal info", func(t *testing.T) {
		s := loaded(t, &fakeStore{doc: sampleDoc()})
		msg, err := Action{Op: OpSave, Kind: domain.KindPersonalInfo}.Apply(ctx, s, false)
		require.NoError(t, err)
		assert.Equal(t, "Personal info saved!", msg)
	})

	t.Run("save personal info failure", func(t *testing.T) {
		s := loaded(t, &fakeStore{doc: sampleDoc(), saveErr: errUnavailable})
		msg, err := Action{Op: OpSave, Kind: domain.KindPersonalInfo}.Apply(ctx, s, false)
		assert.Error(t, err)
		assert.Equal(t, "Failed to save", msg)
	})

	t.Run("update entity", func(t *testing.T) {
		s := loaded(t, &fakeStore{doc: sampleDoc()})
		msg, err := Action{Op: OpSave, Kind: domain.KindWorkExperience}.Apply(ctx, s, false)
		require.NoError(t, err)
		assert.Equal(t, "Experience updated!", msg)
	})

	t.Run("update failure", func(t *testing.T) {
		s := loaded(t, &fakeStore{doc: sampleDoc(), saveErr: errUnavailable})
		msg, err := Action{Op: OpSave, Kind: domain.KindSkills, Index: 1}.Apply(ctx, s, false)
		assert.Error(t, err)
		assert.Equal(t, "Failed to update", msg)
	})

	t.Run("create uses template", func(t *testing.T) {
		store := &fakeStore{doc: sampleDoc()}
		s := loaded(t, store)
		msg, err := Action{Op: OpCreate, Kind: domain.KindSkills}.Apply(ctx, s, false)
		require.NoError(t, err)
		assert.Equal(t, "Skill added!", msg)
		assert.Equal(t, "New Skill", store.lastEntity.(domain.Skill).Name)
	})

	t.Run("delete needs confirmation", func(t *testing.T) {
		store := &fakeStore{doc: sampleDoc()}
		s := loaded(t, store)
		a := Action{Op: OpDelete, Kind: domain.KindSkills, ID: 3}

		msg, err := a.Apply(ctx, s, false)
		assert.ErrorIs(t, err, ErrNotConfirmed)
		assert.Equal(t, "Deletion not confirmed", msg)
		assert.NotContains(t, store.Calls(), "DELETE skills/3")

		msg, err = a.Apply(ctx, s, true)
		require.NoError(t, err)
		assert.Equal(t, "Skill deleted!", msg)
	})

	t.Run("delete failure", func(t *testing.T) {
		s := loaded(t, &fakeStore{doc: sampleDoc(), deleteErr: errUnavailable})
		msg, err := Action{Op: OpDelete, Kind: domain.KindSkills, ID: 3}.Apply(ctx, s, true)
		assert.Error(t, err)
		assert.Equal(t, "Failed to delete", msg)
	})

	t.Run("reload", func(t *testing.T) {
		store := &fakeStore{doc: sampleDoc()}
		s := loaded(t, store)
		msg, err := Action{Op: OpReload}.Apply(ctx, s, false)
		require.NoError(t, err)
		assert.Equal(t, "CV reloaded", msg)

		store.fetchErr = errUnavailable
		msg, err = Action{Op: OpReload}.Apply(ctx, s, false)
		assert.Error(t, err)
		assert.Equal(t, "Failed to load", msg)
	})

	t.Run("list edits are local", func(t *testing.T) {
		store := &fakeStore{doc: sampleDoc()}
		s := loaded(t, store)

		_, err := Action{Op: OpAdd, List: model.ExpertiseAreas}.Apply(ctx, s, false)
		require.NoError(t, err)
		_, err = Action{Op: OpRemove, List: model.LeadershipPoints, Index: 0}.Apply(ctx, s, false)
		require.NoError(t, err)

		doc, _ := s.Document()
		assert.Len(t, doc.PersonalInfo.Expertise, 2)
		assert.Equal(t, []string{}, doc.PersonalInfo.Expertise[1].Skills)
		assert.Empty(t, doc.PersonalInfo.Leadership)
		assert.Equal(t, []string{"GET /api/cv"}, store.Calls())
	})
}

func TestParseAssignment(t *testing.T) {
	a, err := ParseAssignment("personalInfo.title=QA Director = Lead")
	require.NoError(t, err)
	assert.Equal(t, Assignment{Path: "personalInfo.title", Value: "QA Director = Lead"}, a)

	a, err = ParseAssignment("skills.0.name=")
	require.NoError(t, err)
	assert.Equal(t, "", a.Value)

	_, err = ParseAssignment("no-equals")
	assert.Error(t, err)
	_, err = ParseAssignment("unknown.0.x=1")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
