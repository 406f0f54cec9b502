package rules

import (
	"bslint/internal/rule"
)

// Definitions lists every shipped rule.
func Definitions() []rule.Definition {
	return []rule.Definition{
		{Descriptor: parseErrorDesc, New: newParseError},
		{Descriptor: uselessTernaryDesc, New: newUselessTernary},
		{Descriptor: duplicatedConditionDesc, New: newDuplicatedCondition},
		{Descriptor: doubleNegativesDesc, New: newDoubleNegatives},
		{Descriptor: magicNumberDesc, New: newMagicNumber},
		{Descriptor: tooManyReturnsDesc, New: newTooManyReturns},
		{Descriptor: semicolonPresenceDesc, New: newSemicolonPresence},
		{Descriptor: deprecatedFindDesc, New: newDeprecatedFind},
		{Descriptor: executeExternalCodeDesc, New: newExecuteExternalCode},
		{Descriptor: emptyCodeBlockDesc, New: newEmptyCodeBlock},
		{Descriptor: nestedStatementsDesc, New: newNestedStatements},
		{Descriptor: beginTransactionDesc, New: newBeginTransaction},
		{Descriptor: missingTempFileDeletionDesc, New: newMissingTempFileDeletion},
		{Descriptor: numberOfParamsDesc, New: newNumberOfParams},
		{Descriptor: emptyRegionDesc, New: newEmptyRegion},
		{Descriptor: exportVariablesDesc, New: newExportVariables},
		{Descriptor: missingMethodDescriptionDesc, New: newMissingMethodDescription},
		{Descriptor: unusedLocalMethodDesc, New: newUnusedLocalMethod},
		{Descriptor: lineLengthDesc, New: newLineLength},
		{Descriptor: consecutiveEmptyLinesDesc, New: newConsecutiveEmptyLines},
		{Descriptor: spaceAtStartCommentDesc, New: newSpaceAtStartComment},
		{Descriptor: bannedWordDesc, New: newBannedWord},
		{Descriptor: usingTabsDesc, New: newUsingTabs},
	}
}

// Register adds all shipped rules to reg.
func Register(reg *rule.Registry) {
	for _, def := range Definitions() {
		reg.Register(def)
	}
}

// Default returns a registry holding all shipped rules.
func Default() *rule.Registry {
	reg := rule.NewRegistry()
	Register(reg)
	return reg
}
