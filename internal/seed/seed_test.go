package seed

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/store/gormstore"
)

func TestRun_SeedsOnce(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	s := gormstore.New(db)
	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() { _ = s.Close(ctx) })

	content := services.NewContentService(s)

	res, err := Run(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, Result{Departments: 8, News: 3, FAQs: 4}, res)

	faqs, err := content.ListFAQs(ctx)
	require.NoError(t, err)
	require.Len(t, faqs, 4)
	assert.Equal(t, "Why choose our medical for your family?", faqs[0].Question)

	published, err := content.ListNews(ctx, "Wellness", 0)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.NotNil(t, published[0].PublishedAt)

	again, err := Run(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, Result{}, again)
}
