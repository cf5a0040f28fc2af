package dao_test

import (
	"context"
	"testing"
	"time"

	"auto_trainer/dao"
	"auto_trainer/entity"
	"auto_trainer/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluationDatasetDAO(t *testing.T) {
	ctx := context.Background()
	gdb := testdb.New(t)
	trainer := newTrainer("intent", baseTime)
	require.NoError(t, dao.NewTrainerDAO(gdb).Save(ctx, trainer))

	datasetDAO := dao.NewEvaluationDatasetDAO(gdb)
	for i, name := range []string{"old.csv", "new.jsonl"} {
		require.NoError(t, datasetDAO.Save(ctx, &entity.EvaluationDataset{
			TrainerID:    trainer.ID,
			FileName:     name,
			StoredPath:   "/tmp/" + name,
			Format:       entity.DatasetFormatCSV,
			ExampleCount: 150 + i,
			SizeBytes:    1024,
			CreatedAt:    baseTime.Add(time.Duration(i) * time.Minute),
		}))
	}

	datasets, err := datasetDAO.FindByTrainerID(ctx, trainer.ID)
	require.NoError(t, err)
	require.Len(t, datasets, 2)
	assert.Equal(t, "new.jsonl", datasets[0].FileName)
	assert.Regexp(t, `^eds_`, datasets[0].ID)

	assert.ErrorIs(t, datasetDAO.Save(ctx, nil), dao.ErrNilEntity)
	_, err = datasetDAO.FindByTrainerID(ctx, "")
	assert.ErrorIs(t, err, dao.ErrInvalidID)
}

func TestSeedingHistoryDAO(t *testing.T) {
	ctx := context.Background()
	historyDAO := dao.NewSeedingHistoryDAO(testdb.New(t))

	latest, err := historyDAO.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, historyDAO.Save(ctx, &entity.SeedingHistory{FileName: "001_demo.yaml", CreatedAt: baseTime}))
	require.NoError(t, historyDAO.Save(ctx, &entity.SeedingHistory{FileName: "002_more.yaml", CreatedAt: baseTime}))

	latest, err = historyDAO.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "002_more.yaml", latest.FileName)

	assert.Error(t, historyDAO.Save(ctx, &entity.SeedingHistory{FileName: "001_demo.yaml"}), "file names are unique")
	assert.Error(t, historyDAO.Save(ctx, &entity.SeedingHistory{}))
}
