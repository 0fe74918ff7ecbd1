package compiler

import (
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/emr"
	emrtypes "github.com/aws/aws-sdk-go-v2/service/emr/types"

	"emr-fleet/internal/config"
)

// Request-wide defaults.
const (
	DefaultNamePrefix      = "digdag-"
	DefaultReleaseLabel    = "emr-5.16.0"
	DefaultInstanceProfile = "EMR_EC2_DefaultRole"
	DefaultServiceRole     = "EMR_DefaultRole"
)

// Compile assembles the RunJobFlow request for the whole document. sessionID
// names the cluster when the document does not.
func Compile(root *config.Node, sessionID string) (*emr.RunJobFlowInput, error) {
	c := &assembler{root: root}

	input := &emr.RunJobFlowInput{
		Name:                  c.str("name", DefaultNamePrefix+sessionID),
		ReleaseLabel:          c.str("release_label", DefaultReleaseLabel),
		CustomAmiId:           c.optionalStr("custom_ami_id"),
		LogUri:                c.optionalStr("log_uri"),
		AdditionalInfo:        c.optionalStr("additional_info"),
		VisibleToAllUsers:     c.boolean("visible", true),
		SecurityConfiguration: c.optionalStr("security_configuration"),
		JobFlowRole:           c.str("instance_profile", DefaultInstanceProfile),
		ServiceRole:           c.str("service_role", DefaultServiceRole),
		Tags:                  c.tags(),
		Applications:          c.applications(),
		Configurations:        c.configurations(),
		BootstrapActions:      c.bootstrapActions(),
		Instances:             c.instances(),
	}
	if c.err != nil {
		return nil, c.err
	}
	return input, nil
}

// assembler keeps the first error so that the flat request fields can be
// read without a check after every key. Once err is set every read is a
// no-op.
type assembler struct {
	root *config.Node
	err  error
}

func (c *assembler) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *assembler) str(key, def string) *string {
	if c.err != nil {
		return nil
	}
	v, err := config.Get(c.root, key, def)
	if err != nil {
		c.fail(err)
		return nil
	}
	return aws.String(v)
}

func (c *assembler) optionalStr(key string) *string {
	if c.err != nil {
		return nil
	}
	v, err := config.Optional[string](c.root, key)
	c.fail(err)
	return v
}

func (c *assembler) boolean(key string, def bool) *bool {
	if c.err != nil {
		return nil
	}
	v, err := config.Get(c.root, key, def)
	if err != nil {
		c.fail(err)
		return nil
	}
	return aws.Bool(v)
}

func (c *assembler) strList(key string) []string {
	if c.err != nil {
		return nil
	}
	v, err := config.ListOrEmpty[string](c.root, key)
	c.fail(err)
	return v
}

func (c *assembler) tags() []emrtypes.Tag {
	if c.err != nil {
		return nil
	}
	m, err := config.Get[map[string]string](c.root, "tags", nil)
	if err != nil {
		c.fail(err)
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var tags []emrtypes.Tag
	for _, k := range keys {
		tags = append(tags, emrtypes.Tag{Key: aws.String(k), Value: aws.String(m[k])})
	}
	return tags
}

// applications accepts both "Spark" and {name: Spark, args: [...], version: ...}.
func (c *assembler) applications() []emrtypes.Application {
	if c.err != nil {
		return nil
	}
	nodes, err := c.root.NestedListWithShorthand("applications", "name")
	if err != nil {
		c.fail(err)
		return nil
	}

	var apps []emrtypes.Application
	for _, n := range nodes {
		name, err := config.Require[string](n, "name")
		if err != nil {
			c.fail(err)
			return nil
		}
		args, err := config.ListOrEmpty[string](n, "args")
		if err != nil {
			c.fail(err)
			return nil
		}
		version, err := config.Optional[string](n, "version")
		if err != nil {
			c.fail(err)
			return nil
		}
		apps = append(apps, emrtypes.Application{Name: aws.String(name), Args: args, Version: version})
	}
	return apps
}

func (c *assembler) configurations() []emrtypes.Configuration {
	if c.err != nil {
		return nil
	}
	v, err := SoftwareConfigurations(c.root, "configurations")
	c.fail(err)
	return v
}

func (c *assembler) bootstrapActions() []emrtypes.BootstrapActionConfig {
	if c.err != nil {
		return nil
	}
	v, err := bootstrapActions(c.root)
	c.fail(err)
	return v
}

func (c *assembler) instances() *emrtypes.JobFlowInstancesConfig {
	if c.err != nil {
		return nil
	}
	fleets, err := c.fleets()
	if err != nil {
		c.fail(err)
		return nil
	}

	instances := &emrtypes.JobFlowInstancesConfig{
		InstanceFleets:                 fleets,
		Ec2KeyName:                     c.optionalStr("ssh_key"),
		Ec2SubnetIds:                   c.strList("subnet_ids"),
		EmrManagedMasterSecurityGroup:  c.optionalStr("master_security_group"),
		EmrManagedSlaveSecurityGroup:   c.optionalStr("slave_security_group"),
		ServiceAccessSecurityGroup:     c.optionalStr("service_access_security_group"),
		AdditionalMasterSecurityGroups: c.strList("additional_master_security_groups"),
		AdditionalSlaveSecurityGroups:  c.strList("additional_slave_security_groups"),
		KeepJobFlowAliveWhenNoSteps:    c.boolean("keep_alive_when_no_steps", true),
		TerminationProtected:           c.boolean("termination_protected", false),
	}
	if zones := c.strList("availability_zones"); len(zones) > 0 {
		instances.Placement = &emrtypes.PlacementType{AvailabilityZones: zones}
	}
	return instances
}

// fleets compiles master, core and, when its key is present, task. The spot
// policy is compiled once and shared by all of them.
func (c *assembler) fleets() ([]emrtypes.InstanceFleetConfig, error) {
	spotNode, err := c.root.NestedOrEmpty("spot_spec")
	if err != nil {
		return nil, err
	}
	spot, err := SpotPolicy(spotNode)
	if err != nil {
		return nil, err
	}

	masterNode, err := c.root.Nested("master_fleet")
	if err != nil {
		return nil, err
	}
	master, err := MasterFleet(masterNode, spot)
	if err != nil {
		return nil, err
	}

	coreNode, err := c.root.Nested("core_fleet")
	if err != nil {
		return nil, err
	}
	core, err := WorkerFleet(coreNode, emrtypes.InstanceFleetTypeCore, spot)
	if err != nil {
		return nil, err
	}

	fleets := []emrtypes.InstanceFleetConfig{master, core}
	if !c.root.Has("task_fleet") {
		return fleets, nil
	}

	taskNode, err := c.root.Nested("task_fleet")
	if err != nil {
		return nil, err
	}
	task, err := WorkerFleet(taskNode, emrtypes.InstanceFleetTypeTask, spot)
	if err != nil {
		return nil, err
	}
	return append(fleets, task), nil
}
