package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/pkg/router"
)

func TestRouteTableNeedsNoBackingServices(t *testing.T) {
	infos := RouteTable()
	require.NotEmpty(t, infos)

	byName := map[string]router.RouteInfo{}
	for _, ri := range infos {
		byName[ri.Name] = ri
	}

	assert.Equal(t, router.RouteInfo{Method: "POST", Path: "/api/v1/graphql", Name: "graphql"}, byName["graphql"])
	assert.Equal(t, "/api/v1/orders/ws", byName["orders.stream"].Path)
	assert.Equal(t, "GET", byName["admin.unban"].Method)
}
