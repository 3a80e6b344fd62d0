package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/community-accounts-cli/internal/domain"
	"github.com/bnema/community-accounts-cli/internal/ports"
)

func grantInput(points int) PointsInput {
	return PointsInput{
		Env:           domain.EnvDev,
		BackendURL:    "https://dev-backend.example.com",
		APIURL:        "https://dev-adminapi.example.com",
		Username:      "admin",
		Password:      "secret",
		Kind:          domain.PointsGrant,
		Path:          "/admin/v1/su-points/hand-on",
		MaxPerRequest: 5000,
		TargetAID:     "334455",
		Points:        points,
	}
}

func TestPointsAboveCapAreSplit(t *testing.T) {
	gateway := &fakeAdminGateway{identity: ports.AdminIdentity{Token: "admin-token", Email: "admin@test.com"}}
	ledger := &fakeLedger{}
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	service := NewAdminService(gateway, ledger, clock)

	result, err := service.ExecutePoints(context.Background(), grantInput(12000))
	require.NoError(t, err)

	assert.True(t, result.AllSuccess)
	assert.Equal(t, 3, result.Total)
	require.Len(t, gateway.doCalls, 3)
	assert.Equal(t, "/admin/v1/su-points/hand-on", gateway.doCalls[0].path)
	assert.Equal(t, "admin-token", gateway.doCalls[0].token)

	amounts := make([]int, 0, 3)
	for _, call := range gateway.doCalls {
		list := call.body["integralList"].([]map[string]any)
		amounts = append(amounts, list[0]["integral"].(int))
	}
	assert.Equal(t, []int{5000, 5000, 2000}, amounts)

	require.Len(t, ledger.records, 3, "one audit record per sub-request")
	for _, record := range ledger.records {
		assert.Equal(t, "Grant points", record.Operation)
		assert.Equal(t, "admin@test.com", record.Email)
		assert.Equal(t, "334455", record.TargetID)
		assert.Equal(t, domain.OutcomeSuccess, record.Result)
	}
}

func TestAdminStatusZeroCountsAsSuccess(t *testing.T) {
	gateway := &fakeAdminGateway{
		identity:  ports.AdminIdentity{Token: "admin-token", Email: "admin@test.com"},
		responses: []domain.Response{{HTTPStatus: 200, Status: 0, StatusKnown: true}},
	}
	service := NewAdminService(gateway, &fakeLedger{}, &fakeClock{now: time.Now()})

	result, err := service.ExecutePoints(context.Background(), grantInput(100))
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestAdminRemoteFailureIsRecorded(t *testing.T) {
	gateway := &fakeAdminGateway{
		identity:  ports.AdminIdentity{Token: "admin-token", Email: "admin@test.com"},
		responses: []domain.Response{{HTTPStatus: 200, Status: 403, StatusKnown: true}},
	}
	ledger := &fakeLedger{}
	service := NewAdminService(gateway, ledger, &fakeClock{now: time.Now()})

	result, err := service.ExecutePoints(context.Background(), grantInput(100))
	require.NoError(t, err)

	assert.False(t, result.Success)
	require.Len(t, ledger.records, 1)
	assert.Equal(t, domain.OutcomeFailed, ledger.records[0].Result)
	assert.Contains(t, ledger.records[0].Details, "remote status 403")
}

func TestAdminLoginFailureIsRecorded(t *testing.T) {
	gateway := &fakeAdminGateway{loginErr: assert.AnError}
	ledger := &fakeLedger{}
	service := NewAdminService(gateway, ledger, &fakeClock{now: time.Now()})

	result, err := service.ExecutePoints(context.Background(), grantInput(100))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Empty(t, gateway.doCalls)
	require.Len(t, ledger.records, 1)
	assert.Equal(t, "unknown", ledger.records[0].Email)
	assert.Contains(t, ledger.records[0].Details, "admin login failed")
}

func TestAdminSessionIsReusedAcrossOperations(t *testing.T) {
	gateway := &fakeAdminGateway{identity: ports.AdminIdentity{Token: "admin-token", Email: "admin@test.com"}}
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	service := NewAdminService(gateway, &fakeLedger{}, clock)
	ctx := context.Background()

	_, err := service.ExecutePoints(ctx, grantInput(100))
	require.NoError(t, err)
	_, err = service.ExecutePoints(ctx, grantInput(200))
	require.NoError(t, err)
	assert.Len(t, gateway.logins, 1)

	clock.now = clock.now.Add(adminSessionTTL + time.Minute)
	_, err = service.ExecutePoints(ctx, grantInput(300))
	require.NoError(t, err)
	assert.Len(t, gateway.logins, 2, "expired admin token forces a fresh login")
}

func TestPointsInputIsValidatedBeforeLogin(t *testing.T) {
	gateway := &fakeAdminGateway{}
	ledger := &fakeLedger{}
	service := NewAdminService(gateway, ledger, &fakeClock{now: time.Now()})
	ctx := context.Background()

	result, err := service.ExecutePoints(ctx, grantInput(0))
	require.NoError(t, err)
	assert.False(t, result.Success)

	input := grantInput(100)
	input.TargetAID = "  "
	result, err = service.ExecutePoints(ctx, input)
	require.NoError(t, err)
	assert.False(t, result.Success)

	assert.Empty(t, gateway.logins)
	assert.Len(t, ledger.records, 2)
}

func TestDeductPointsUsesDeductionPayload(t *testing.T) {
	gateway := &fakeAdminGateway{identity: ports.AdminIdentity{Token: "admin-token", Email: "admin@test.com"}}
	service := NewAdminService(gateway, &fakeLedger{}, &fakeClock{now: time.Now()})

	input := grantInput(400)
	input.Kind = domain.PointsDeduct
	input.Path = "/admin/v1/points/deduction"
	input.MaxPerRequest = 500

	result, err := service.ExecutePoints(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.Len(t, gateway.doCalls, 1)
	assert.Equal(t, "/admin/v1/points/deduction", gateway.doCalls[0].path)
	assert.Equal(t, []string{"334455"}, gateway.doCalls[0].body["userIds"])
	assert.Equal(t, "400", gateway.doCalls[0].body["points"])
}
