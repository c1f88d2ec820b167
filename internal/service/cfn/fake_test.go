package cfn

import (
	"context"
	"errors"
	"sync"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
)

// fakeAPI はテスト用のCloudFormationクライアント
type fakeAPI struct {
	mu sync.Mutex

	listPages     []*cloudformation.ListStacksOutput
	listInputs    []*cloudformation.ListStacksInput
	stacks        map[string][]types.Stack // 呼び出しごとに先頭から返す（最後の要素は繰り返す）
	describeCalls int
	eventPages    []*cloudformation.DescribeStackEventsOutput
	resources     []types.StackResource
	err           error
}

func notFoundError(name string) error {
	return &smithy.GenericAPIError{Code: "ValidationError", Message: "Stack with id " + name + " does not exist"}
}

func (f *fakeAPI) ListStacks(_ context.Context, in *cloudformation.ListStacksInput, _ ...func(*cloudformation.Options)) (*cloudformation.ListStacksOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.listInputs = append(f.listInputs, in)
	idx := 0
	if in.NextToken != nil {
		for i := range f.listPages {
			if awssdk.ToString(f.listPages[i].NextToken) == *in.NextToken {
				idx = i + 1
			}
		}
	}
	return f.listPages[idx], nil
}

func (f *fakeAPI) DescribeStacks(_ context.Context, in *cloudformation.DescribeStacksInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	name := awssdk.ToString(in.StackName)
	seq, ok := f.stacks[name]
	if !ok {
		return nil, notFoundError(name)
	}
	i := f.describeCalls
	if i >= len(seq) {
		i = len(seq) - 1
	}
	f.describeCalls++
	return &cloudformation.DescribeStacksOutput{Stacks: []types.Stack{seq[i]}}, nil
}

func (f *fakeAPI) DescribeStackEvents(_ context.Context, in *cloudformation.DescribeStackEventsInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStackEventsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.eventPages) == 0 {
		return nil, errors.New("no events configured")
	}
	if in.NextToken == nil {
		return f.eventPages[0], nil
	}
	for i, page := range f.eventPages {
		if awssdk.ToString(page.NextToken) == *in.NextToken {
			return f.eventPages[i+1], nil
		}
	}
	return nil, errors.New("unknown token")
}

func (f *fakeAPI) DescribeStackResources(_ context.Context, in *cloudformation.DescribeStackResourcesInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStackResourcesOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &cloudformation.DescribeStackResourcesOutput{StackResources: f.resources}, nil
}

func stackWithStatus(name string, status types.StackStatus, outputs map[string]string) types.Stack {
	s := types.Stack{StackName: awssdk.String(name), StackStatus: status}
	for k, v := range outputs {
		s.Outputs = append(s.Outputs, types.Output{OutputKey: awssdk.String(k), OutputValue: awssdk.String(v)})
	}
	return s
}
