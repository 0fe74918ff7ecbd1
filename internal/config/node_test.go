package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, doc string) *Node {
	t.Helper()
	values, err := Parse([]byte(doc))
	require.NoError(t, err)
	return NewNode(values)
}

func TestGetDefaults(t *testing.T) {
	n := Empty()

	s, err := Get(n, "volume_type", "gp2")
	require.NoError(t, err)
	assert.Equal(t, "gp2", s)

	i, err := Get[int32](n, "size", 256)
	require.NoError(t, err)
	assert.Equal(t, int32(256), i)

	f, err := Get(n, "bid_percentage", 100.0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, f)

	b, err := Get(n, "optimized", true)
	require.NoError(t, err)
	assert.True(t, b)
}

func TestGetWeakConversion(t *testing.T) {
	n := mustParse(t, `
size: "512"
ratio: 50
flag: "false"
name: 42
`)

	size, err := Get[int32](n, "size", 0)
	require.NoError(t, err)
	assert.Equal(t, int32(512), size)

	ratio, err := Get(n, "ratio", 0.0)
	require.NoError(t, err)
	assert.Equal(t, 50.0, ratio)

	flag, err := Get(n, "flag", true)
	require.NoError(t, err)
	assert.False(t, flag)

	name, err := Get(n, "name", "")
	require.NoError(t, err)
	assert.Equal(t, "42", name)
}

func TestRequireMissing(t *testing.T) {
	n := mustParse(t, `core_fleet: {candidates: [{}]}`)

	fleet, err := n.Nested("core_fleet")
	require.NoError(t, err)
	candidates, err := fleet.NestedList("candidates")
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	_, err = Require[string](candidates[0], "instance_type")
	var missing *MissingConfigurationError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "core_fleet.candidates[0].instance_type", missing.Key)
}

func TestTypeMismatch(t *testing.T) {
	n := mustParse(t, `
target_capacity: many
ebs: [1, 2]
`)

	_, err := Require[int32](n, "target_capacity")
	var mismatch *TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "target_capacity", mismatch.Key)

	_, err = n.NestedOrEmpty("ebs")
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "ebs", mismatch.Key)
}

func TestOptional(t *testing.T) {
	n := mustParse(t, `bid_price: "0.25"`)

	price, err := Optional[string](n, "bid_price")
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, "0.25", *price)

	iops, err := Optional[int32](n, "iops")
	require.NoError(t, err)
	assert.Nil(t, iops)
}

func TestNullIsAbsent(t *testing.T) {
	n := mustParse(t, `
task_fleet:
log_uri: ~
`)

	assert.False(t, n.Has("task_fleet"))
	uri, err := Optional[string](n, "log_uri")
	require.NoError(t, err)
	assert.Nil(t, uri)
}

func TestNestedOrEmptyKeepsPath(t *testing.T) {
	n := mustParse(t, `master_fleet: {}`)

	fleet, err := n.NestedOrEmpty("master_fleet")
	require.NoError(t, err)
	ebs, err := fleet.NestedOrEmpty("ebs")
	require.NoError(t, err)

	assert.True(t, ebs.IsEmpty())
	assert.Equal(t, "master_fleet.ebs", ebs.Path())
	assert.Equal(t, "master_fleet.ebs.size", ebs.Key("size"))
}

func TestLists(t *testing.T) {
	n := mustParse(t, `
args: [a, b, c]
`)

	args, err := List[string](n, "args")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, args)

	_, err = List[string](n, "applications")
	var missing *MissingConfigurationError
	require.True(t, errors.As(err, &missing))

	apps, err := ListOrEmpty[string](n, "applications")
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestStringMap(t *testing.T) {
	n := mustParse(t, `
properties:
  fs.s3.maxConnections: 100
  spark.dynamicAllocation.enabled: "true"
  spark.speculation: true
  yarn.nodemanager.vmem-check-enabled: false
`)

	props, err := Get[map[string]string](n, "properties", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"fs.s3.maxConnections":                "100",
		"spark.dynamicAllocation.enabled":     "true",
		"spark.speculation":                   "true",
		"yarn.nodemanager.vmem-check-enabled": "false",
	}, props)
}

func TestBoolIntoString(t *testing.T) {
	n := mustParse(t, `
bid_price: true
name: false
`)

	price, err := Optional[string](n, "bid_price")
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, "true", *price)

	name, err := Get(n, "name", "")
	require.NoError(t, err)
	assert.Equal(t, "false", name)
}

func TestInt32Conversion(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    int32
		wantErr bool
	}{
		{name: "integer", doc: `v: 4`, want: 4},
		{name: "quoted integer", doc: `v: "4"`, want: 4},
		{name: "whole float", doc: `v: 4.0`, want: 4},
		{name: "negative", doc: `v: -3`, want: -3},
		{name: "largest int32", doc: `v: 2147483647`, want: 2147483647},
		{name: "fractional float", doc: `v: 4.9`, wantErr: true},
		{name: "overflows int32", doc: `v: 4294967300`, wantErr: true},
		{name: "one past int32", doc: `v: 2147483648`, wantErr: true},
		{name: "fractional string", doc: `v: "1.5"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Require[int32](mustParse(t, tt.doc), "v")
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			var mismatch *TypeMismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, "v", mismatch.Key)
		})
	}
}

func TestInt32ListConversion(t *testing.T) {
	n := mustParse(t, `sizes: [1, 2.5]`)

	_, err := List[int32](n, "sizes")
	var mismatch *TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "sizes", mismatch.Key)
}

type action string

func TestEnum(t *testing.T) {
	allowed := []action{"TERMINATE_CLUSTER", "SWITCH_TO_ON_DEMAND"}

	v, err := Enum(Empty(), "timeout_action", action("TERMINATE_CLUSTER"), allowed)
	require.NoError(t, err)
	assert.Equal(t, action("TERMINATE_CLUSTER"), v)

	v, err = Enum(mustParse(t, `timeout_action: SWITCH_TO_ON_DEMAND`), "timeout_action", action("TERMINATE_CLUSTER"), allowed)
	require.NoError(t, err)
	assert.Equal(t, action("SWITCH_TO_ON_DEMAND"), v)

	_, err = Enum(mustParse(t, `timeout_action: WAIT`), "timeout_action", action("TERMINATE_CLUSTER"), allowed)
	var invalid *InvalidEnumValueError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "WAIT", invalid.Value)
	assert.Equal(t, []string{"TERMINATE_CLUSTER", "SWITCH_TO_ON_DEMAND"}, invalid.Allowed)

	opt, err := OptionalEnum(Empty(), "timeout_action", allowed)
	require.NoError(t, err)
	assert.Nil(t, opt)
}

func TestMerge(t *testing.T) {
	base := map[string]any{
		"name": "base",
		"core_fleet": map[string]any{
			"target_capacity": 2,
			"candidates":      []any{map[string]any{"instance_type": "m5.xlarge"}},
		},
	}
	overlay := map[string]any{
		"core_fleet": map[string]any{"target_capacity": 8},
	}

	merged := Merge(base, overlay)

	assert.Equal(t, "base", merged["name"])
	core := merged["core_fleet"].(map[string]any)
	assert.Equal(t, 8, core["target_capacity"])
	assert.Len(t, core["candidates"], 1)
	assert.Equal(t, 2, base["core_fleet"].(map[string]any)["target_capacity"])
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.yaml")
	prod := filepath.Join(dir, "prod.yaml")
	require.NoError(t, os.WriteFile(base, []byte("name: nightly\nrelease_label: emr-5.16.0\n"), 0o600))
	require.NoError(t, os.WriteFile(prod, []byte("release_label: emr-6.1.0\n"), 0o600))

	n, err := LoadFiles(base, prod)
	require.NoError(t, err)

	name, err := Require[string](n, "name")
	require.NoError(t, err)
	assert.Equal(t, "nightly", name)
	label, err := Require[string](n, "release_label")
	require.NoError(t, err)
	assert.Equal(t, "emr-6.1.0", label)

	_, err = LoadFiles()
	assert.Error(t, err)
	_, err = LoadFiles(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestNestedListWithShorthand(t *testing.T) {
	n := mustParse(t, `
applications:
  - Hadoop
  - name: Spark
    args: [--verbose]
`)

	apps, err := n.NestedListWithShorthand("applications", "name")
	require.NoError(t, err)
	require.Len(t, apps, 2)

	first, err := Require[string](apps[0], "name")
	require.NoError(t, err)
	assert.Equal(t, "Hadoop", first)
	assert.Equal(t, "applications[0]", apps[0].Path())

	args, err := ListOrEmpty[string](apps[1], "args")
	require.NoError(t, err)
	assert.Equal(t, []string{"--verbose"}, args)

	_, err = n.NestedListOrEmpty("applications")
	var mismatch *TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "applications[0]", mismatch.Key)
}
