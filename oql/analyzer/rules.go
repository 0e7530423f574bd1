package analyzer

// DesugarRules is the ordered default rule set of the desugar batch. The
// batch iterates to a fixed point, so rules that depend on another rule's
// output (and on the re-analysis that follows it) simply pick the work up on
// a later iteration.
var DesugarRules = []Rule{
	{"expand_pattern_gens", expandPatternGens},
	{"expand_pattern_binds", expandPatternBinds},
	{"inline_block_binds", inlineBlockBinds},
	{"remove_empty_blocks", removeEmptyBlocks},
	{"desugar_sugar_ops", desugarSugarOps},
	{"resolve_aliases", resolveAliases},
	{"expand_star", expandStar},
	{"desugar_group_by", desugarGroupBy},
	{"desugar_select", desugarSelect},
}

// NormalizeRules is the ordered default rule set of the normalize batch.
var NormalizeRules = []Rule{
	{"beta_reduce", betaReduce},
	{"expand_pattern_binds", expandPatternBinds},
	{"inline_block_binds", inlineBlockBinds},
	{"remove_empty_blocks", removeEmptyBlocks},
	{"inline_comp_binds", inlineCompBinds},
	{"hoist_comprehensions", hoistComprehensions},
}

// CanonicalizeRules is the rule set of the canonicalize batch; it runs once.
var CanonicalizeRules = []Rule{
	{"canonicalize", canonicalize},
}
