package codemod

// FileGroup holds the operations destined for one file, in patch order.
type FileGroup struct {
	Path       string
	Operations []Operation
}

// ExecutionPlan is a patch partitioned by target file. Groups are ordered by
// the first appearance of their file in the patch.
type ExecutionPlan struct {
	Groups []FileGroup
}

// CreatePlan groups ops by file. Operations without a target are skipped.
// When files is non-empty only groups whose resolved path is listed survive.
func CreatePlan(ops []Operation, resolver *PathResolver, files []string) *ExecutionPlan {
	allowed := make(map[string]struct{}, len(files))
	for _, f := range files {
		allowed[resolver.Resolve(f)] = struct{}{}
	}

	index := make(map[string]int)
	plan := &ExecutionPlan{}
	for _, op := range ops {
		path := op.Target()
		if path == "" {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[resolver.Resolve(path)]; !ok {
				continue
			}
		}

		i, ok := index[path]
		if !ok {
			i = len(plan.Groups)
			index[path] = i
			plan.Groups = append(plan.Groups, FileGroup{Path: path})
		}
		plan.Groups[i].Operations = append(plan.Groups[i].Operations, op)
	}
	return plan
}

func (p *ExecutionPlan) OperationCount() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.Operations)
	}
	return n
}
