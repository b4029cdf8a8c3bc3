package main

import (
	"encoding/json"
	"slices"
)

type CheckResult struct {
	Using        UsageMap
	Missing      UsageMap
	Unused       []string
	UnusedDev    []string
	FilesChecked int
}

// CompileResult derives missing and unused dependencies from the usage map.
// Only dependencies and devDependencies are judged unused.
func CompileResult(usage UsageMap, pkg *Package, policy *Policy, classifier *Classifier) *CheckResult {
	isExempt := func(name string) bool {
		if policy.IgnoreMatches.Match(name) {
			return true
		}
		return policy.IgnoreBinPackage && classifier.IsBinPackage(name)
	}

	missing := UsageMap{}
	if !policy.SkipMissing {
		for name, files := range usage {
			if pkg.IsAnyDependency(name) || isExempt(name) {
				continue
			}
			for filePath := range files {
				missing.Add(name, filePath)
			}
		}
	}

	unusedOf := func(deps DepsSet) []string {
		unused := []string{}
		for name := range deps {
			if usage.Has(name) || isExempt(name) {
				continue
			}
			unused = append(unused, name)
		}
		slices.Sort(unused)
		return unused
	}

	return &CheckResult{
		Using:     usage,
		Missing:   missing,
		Unused:    unusedOf(pkg.Dependencies),
		UnusedDev: unusedOf(pkg.DevDependencies),
	}
}

func (r *CheckResult) HasIssues() bool {
	return len(r.Missing) > 0 || len(r.Unused) > 0 || len(r.UnusedDev) > 0
}

type checkResultJSON struct {
	UsingDependencies     map[string][]string `json:"usingDependencies"`
	MissingDependencies   map[string][]string `json:"missingDependencies"`
	UnusedDependencies    []string            `json:"unusedDependencies"`
	UnusedDevDependencies []string            `json:"unusedDevDependencies"`
}

func (r *CheckResult) MarshalJSON() ([]byte, error) {
	out := checkResultJSON{
		UsingDependencies:     r.Using.Sorted(),
		MissingDependencies:   r.Missing.Sorted(),
		UnusedDependencies:    r.Unused,
		UnusedDevDependencies: r.UnusedDev,
	}
	if out.UnusedDependencies == nil {
		out.UnusedDependencies = []string{}
	}
	if out.UnusedDevDependencies == nil {
		out.UnusedDevDependencies = []string{}
	}
	return json.Marshal(out)
}
