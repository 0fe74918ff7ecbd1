package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/emr"
	emrtypes "github.com/aws/aws-sdk-go-v2/service/emr/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"emr-fleet/internal/cluster"
	"emr-fleet/internal/config"
	"emr-fleet/internal/settings"
	"emr-fleet/internal/state"
	"emr-fleet/pkg/models"
)

const nightlyDoc = `
name: nightly
release_label: emr-6.1.0
master_fleet:
  candidates:
    - instance_type: m5.xlarge
core_fleet:
  target_capacity: 4
  candidates:
    - instance_type: m5.xlarge
      spot_units: 2
`

type fakeCluster struct {
	submitted  *emr.RunJobFlowInput
	submitErr  error
	waited     []string
	waitState  emrtypes.ClusterState
	waitErr    error
	terminated []string
}

func (f *fakeCluster) Submit(_ context.Context, input *emr.RunJobFlowInput) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submitted = input
	return "j-NIGHTLY", nil
}

func (f *fakeCluster) Wait(_ context.Context, id string, _ cluster.WaitOptions) (emrtypes.ClusterState, error) {
	f.waited = append(f.waited, id)
	return f.waitState, f.waitErr
}

func (f *fakeCluster) Terminate(_ context.Context, id string) error {
	f.terminated = append(f.terminated, id)
	return nil
}

type fakeEstimator struct {
	region string
}

func (f *fakeEstimator) Estimate(_ context.Context, req *emr.RunJobFlowInput, region string) (*models.Estimate, error) {
	f.region = region
	est := &models.Estimate{Region: region}
	for _, fleet := range req.Instances.InstanceFleets {
		est.Fleets = append(est.Fleets, models.FleetEstimate{
			Role:         string(fleet.InstanceFleetType),
			InstanceType: aws.ToString(fleet.InstanceTypeConfigs[0].InstanceType),
			HourlyCost:   0.5,
		})
		est.HourlyCost += 0.5
	}
	return est, nil
}

func newTestApp(t *testing.T) (*App, *fakeCluster, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	doc := filepath.Join(dir, "cluster.yaml")
	require.NoError(t, os.WriteFile(doc, []byte(nightlyDoc), 0o600))

	fc := &fakeCluster{waitState: emrtypes.ClusterStateWaiting}
	out := &bytes.Buffer{}
	a := &App{
		Settings: &settings.Settings{
			SessionID: "session-1",
			StateFile: filepath.Join(dir, "state", "state.yaml"),
		},
		Logger:  zap.NewNop(),
		Out:     out,
		Region:  "us-east-1",
		Cluster: fc,
		Prices:  &fakeEstimator{},
	}
	return a, fc, out, doc
}

func TestRender(t *testing.T) {
	a, fc, out, doc := newTestApp(t)

	require.NoError(t, a.Render([]string{doc}))
	assert.Nil(t, fc.submitted)

	var rendered map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rendered))
	assert.Equal(t, "nightly", rendered["Name"])
	assert.Equal(t, "emr-6.1.0", rendered["ReleaseLabel"])
}

func TestCreateExportsClusterID(t *testing.T) {
	a, fc, out, doc := newTestApp(t)

	require.NoError(t, a.Create(context.Background(), []string{doc}, CreateOptions{}))

	require.NotNil(t, fc.submitted)
	assert.Equal(t, "nightly", aws.ToString(fc.submitted.Name))
	assert.Empty(t, fc.waited)
	assert.Equal(t, "j-NIGHTLY\n", out.String())

	s, err := state.Load(a.Settings.StateFile)
	require.NoError(t, err)
	assert.Equal(t, "j-NIGHTLY", s.LastCluster.ID)
}

func TestCreatePrintsClusterIDWhenStateSaveFails(t *testing.T) {
	a, fc, out, doc := newTestApp(t)
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	a.Settings.StateFile = filepath.Join(blocker, "state.yaml")

	err := a.Create(context.Background(), []string{doc}, CreateOptions{Wait: true, WaitOptions: cluster.DefaultWaitOptions()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "j-NIGHTLY")
	assert.Equal(t, "j-NIGHTLY\n", out.String())
	assert.Empty(t, fc.waited)
}

func TestCreateAndWait(t *testing.T) {
	a, fc, _, doc := newTestApp(t)

	err := a.Create(context.Background(), []string{doc}, CreateOptions{Wait: true, WaitOptions: cluster.DefaultWaitOptions()})
	require.NoError(t, err)
	assert.Equal(t, []string{"j-NIGHTLY"}, fc.waited)
}

func TestCreateInvalidConfigDoesNotSubmit(t *testing.T) {
	a, fc, _, _ := newTestApp(t)
	doc := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(doc, []byte("master_fleet: {candidates: [{instance_type: m5.xlarge}]}\ncore_fleet: {candidates: [{instance_type: m5.xlarge}]}\n"), 0o600))

	err := a.Create(context.Background(), []string{doc}, CreateOptions{})

	var missing *config.MissingConfigurationError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "core_fleet.target_capacity", missing.Key)
	assert.Nil(t, fc.submitted)
	_, statErr := os.Stat(a.Settings.StateFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCreateSubmissionFailure(t *testing.T) {
	a, fc, _, doc := newTestApp(t)
	fc.submitErr = &cluster.SubmissionError{Op: "RunJobFlow", Err: errors.New("throttled")}

	err := a.Create(context.Background(), []string{doc}, CreateOptions{})

	var subErr *cluster.SubmissionError
	require.True(t, errors.As(err, &subErr))
	_, statErr := os.Stat(a.Settings.StateFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWaitAndShutdownUseLastCluster(t *testing.T) {
	a, fc, out, _ := newTestApp(t)
	require.NoError(t, state.Save(a.Settings.StateFile, &state.State{LastCluster: state.Cluster{ID: "j-LAST"}}))

	require.NoError(t, a.Wait(context.Background(), "", cluster.DefaultWaitOptions()))
	assert.Equal(t, []string{"j-LAST"}, fc.waited)
	assert.Equal(t, "j-LAST WAITING\n", out.String())

	require.NoError(t, a.Shutdown(context.Background(), ""))
	require.NoError(t, a.Shutdown(context.Background(), "j-OTHER"))
	assert.Equal(t, []string{"j-LAST", "j-OTHER"}, fc.terminated)
}

func TestWaitWithoutClusterID(t *testing.T) {
	a, _, _, _ := newTestApp(t)

	err := a.Wait(context.Background(), "", cluster.DefaultWaitOptions())
	assert.ErrorContains(t, err, "last_cluster.id")
}

func TestCost(t *testing.T) {
	a, _, out, doc := newTestApp(t)

	require.NoError(t, a.Cost(context.Background(), []string{doc}, true))

	var est models.Estimate
	require.NoError(t, json.Unmarshal(out.Bytes(), &est))
	assert.Equal(t, "us-east-1", est.Region)
	assert.Len(t, est.Fleets, 2)
	assert.InDelta(t, 1.0, est.HourlyCost, 1e-9)

	out.Reset()
	require.NoError(t, a.Cost(context.Background(), []string{doc}, false))
	assert.Contains(t, out.String(), "total (us-east-1): $1.0000/hour")
}

func TestParseClusterStates(t *testing.T) {
	states, err := ParseClusterStates("success-state", []string{"WAITING", "TERMINATED"})
	require.NoError(t, err)
	assert.Equal(t, []emrtypes.ClusterState{emrtypes.ClusterStateWaiting, emrtypes.ClusterStateTerminated}, states)

	_, err = ParseClusterStates("success-state", []string{"READY"})
	var invalid *config.InvalidEnumValueError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "success-state", invalid.Key)
	assert.Equal(t, "READY", invalid.Value)
}
