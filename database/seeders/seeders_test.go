package seeders

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories/repotest"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
)

func stores() Stores {
	s := repotest.New()
	return Stores{Users: s.Users, Categories: s.Categories}
}

func TestSeedAdminCreatesOnce(t *testing.T) {
	ctx := context.Background()
	s := stores()

	require.NoError(t, seedAdmin(ctx, s, "root@example.com", "s3cret"))
	u, err := s.Users.FindByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.True(t, auth.CheckPassword(u.Password, "s3cret"))

	require.NoError(t, seedAdmin(ctx, s, "root@example.com", "other"))
	again, err := s.Users.FindByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.True(t, auth.CheckPassword(again.Password, "s3cret"))
}

func TestSeedAdminSkipsWithoutPassword(t *testing.T) {
	ctx := context.Background()
	s := stores()

	require.NoError(t, seedAdmin(ctx, s, "root@example.com", ""))
	_, err := s.Users.FindByEmail(ctx, "root@example.com")
	assert.Error(t, err)
}

func TestSeedCategoriesIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := stores()
	require.NoError(t, s.Categories.Create(ctx, &models.Category{Name: "Shoes"}))

	require.NoError(t, seedCategories(ctx, s, []string{"Tops", "Shoes"}))
	require.NoError(t, seedCategories(ctx, s, []string{"Tops", "Shoes"}))

	all, err := s.Categories.All(ctx)
	require.NoError(t, err)
	var names []string
	for _, c := range all {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Shoes", "Tops"}, names)
}

func TestRunReportsEachSeeder(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "")
	var out bytes.Buffer

	require.NoError(t, Run(context.Background(), stores(), &out))
	assert.Contains(t, out.String(), "Running seeder: admin … done")
	assert.Contains(t, out.String(), "Running seeder: categories … done")
}
