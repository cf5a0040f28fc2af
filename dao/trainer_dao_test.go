package dao_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"auto_trainer/dao"
	"auto_trainer/entity"
	"auto_trainer/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTrainer(name string, createdAt time.Time) *entity.Trainer {
	return &entity.Trainer{
		Name:        name,
		Description: name + " description",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func sampleLabels() entity.LabelsConfig {
	return entity.LabelsConfig{
		Labels: []entity.Label{
			{Name: "REFUND", Explanation: "asks for money back", Examples: "I want a refund"},
		},
		IncludeOOS: true,
	}
}

func newConfig(trainerID string, createdAt time.Time) *entity.TrainerConfig {
	return &entity.TrainerConfig{
		TrainerID:         trainerID,
		TaskType:          entity.TaskTypeTextClassification,
		TaskDescription:   "route tickets",
		DomainDescription: "support inbox",
		LabelsConfig:      sampleLabels(),
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}
}

func TestTrainerDAOSave(t *testing.T) {
	trainerDAO := dao.NewTrainerDAO(testdb.New(t))
	trainer := newTrainer("intent", baseTime)

	err := trainerDAO.Save(context.Background(), trainer)
	require.NoError(t, err, "save should succeed")
	assert.Regexp(t, `^trn_[0-9A-Za-z]{16}$`, trainer.ID)

	found, err := trainerDAO.FindByID(context.Background(), trainer.ID)
	require.NoError(t, err)
	assert.Equal(t, "intent", found.Name)
	assert.True(t, found.CreatedAt.Equal(found.UpdatedAt))

	assert.ErrorIs(t, trainerDAO.Save(context.Background(), nil), dao.ErrNilEntity)
}

func TestTrainerDAOFindByID(t *testing.T) {
	trainerDAO := dao.NewTrainerDAO(testdb.New(t))

	t.Run("empty id", func(t *testing.T) {
		_, err := trainerDAO.FindByID(context.Background(), " ")
		assert.ErrorIs(t, err, dao.ErrInvalidID)
	})

	t.Run("missing row", func(t *testing.T) {
		found, err := trainerDAO.FindByID(context.Background(), "trn_doesnotexist00")
		assert.Nil(t, found)
		assert.True(t, dao.IsNotFound(err))
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})
}

func TestTrainerDAOFindAllOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	trainerDAO := dao.NewTrainerDAO(testdb.New(t))

	for i, name := range []string{"first", "second", "third"} {
		require.NoError(t, trainerDAO.Save(ctx, newTrainer(name, baseTime.Add(time.Duration(i)*time.Minute))))
	}

	all, err := trainerDAO.FindAll(ctx, entity.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Name)
	assert.Equal(t, "second", all[1].Name)
	assert.Equal(t, "first", all[2].Name)

	limit, offset := 1, 1
	page, err := trainerDAO.FindAll(ctx, entity.ListOptions{Limit: &limit, Offset: &offset})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "second", page[0].Name)

	zero := 0
	empty, err := trainerDAO.FindAll(ctx, entity.ListOptions{Limit: &zero})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTrainerDAOFindByIDWithConfigs(t *testing.T) {
	ctx := context.Background()
	gdb := testdb.New(t)
	trainerDAO := dao.NewTrainerDAO(gdb)
	configDAO := dao.NewTrainerConfigDAO(gdb)

	trainer := newTrainer("intent", baseTime)
	require.NoError(t, trainerDAO.Save(ctx, trainer))

	older := newConfig(trainer.ID, baseTime.Add(time.Minute))
	newer := newConfig(trainer.ID, baseTime.Add(2*time.Minute))
	require.NoError(t, configDAO.Save(ctx, older))
	require.NoError(t, configDAO.Save(ctx, newer))

	found, err := trainerDAO.FindByIDWithConfigs(ctx, trainer.ID)
	require.NoError(t, err)
	require.Len(t, found.Configs, 2)
	assert.Equal(t, newer.ID, found.Configs[0].ID)
	assert.Equal(t, older.ID, found.Configs[1].ID)
	assert.Equal(t, sampleLabels(), found.Configs[0].LabelsConfig)
	assert.Nil(t, found.Configs[0].RefinedLabelsConfig)
	assert.Nil(t, found.Configs[0].ActivatedAt)

	_, err = trainerDAO.FindByIDWithConfigs(ctx, "trn_doesnotexist00")
	assert.True(t, dao.IsNotFound(err))
}

func TestTrainerDAOUpdateByID(t *testing.T) {
	ctx := context.Background()
	trainerDAO := dao.NewTrainerDAO(testdb.New(t))

	trainer := newTrainer("intent", baseTime)
	require.NoError(t, trainerDAO.Save(ctx, trainer))

	later := baseTime.Add(time.Hour)
	updated, err := trainerDAO.UpdateByID(ctx, trainer.ID, map[string]interface{}{
		"description": "rewritten",
		"updated_at":  later,
	})
	require.NoError(t, err)
	assert.Equal(t, "rewritten", updated.Description)
	assert.True(t, updated.UpdatedAt.Equal(later))
	assert.True(t, updated.CreatedAt.Equal(baseTime))

	_, err = trainerDAO.UpdateByID(ctx, trainer.ID, nil)
	assert.ErrorIs(t, err, dao.ErrEmptyUpdate)

	_, err = trainerDAO.UpdateByID(ctx, "trn_doesnotexist00", map[string]interface{}{"name": "x"})
	assert.True(t, dao.IsNotFound(err))
}

func TestNilDBReportsNotInitialized(t *testing.T) {
	testdb.QuietLogs()
	trainerDAO := dao.NewTrainerDAO(nil)

	_, err := trainerDAO.FindAll(context.Background(), entity.ListOptions{})
	assert.ErrorIs(t, err, dao.ErrDBNotInitialized)

	err = dao.Transaction(context.Background(), nil, func(*gorm.DB) error { return nil })
	assert.ErrorIs(t, err, dao.ErrDBNotInitialized)
}
