package access

import (
	"errors"
	"testing"

	"github.com/AlexMoto69/uplearn/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedModules(t *testing.T) {
	p := progress.Default()
	p.InProgress.Add(3)
	p.Completed.Add(1)
	p.Completed.Add(2)

	assert.Equal(t, []progress.ModuleID{1, 2, 3}, AllowedModules(p).Sorted())
	assert.Empty(t, AllowedModules(progress.Default()))
}

func TestValidateRequest_Wildcards(t *testing.T) {
	allowed := progress.NewModuleSet(3, 1, 2)
	for _, sel := range []string{"", "  ", "all", "ALL", "*", "Any"} {
		t.Run(sel, func(t *testing.T) {
			got, err := ValidateRequest(sel, allowed)
			require.NoError(t, err)
			assert.Equal(t, []progress.ModuleID{1, 2, 3}, got)
		})
	}
}

func TestValidateRequest_NoModulesAvailable(t *testing.T) {
	for _, sel := range []string{"", "all", "*"} {
		_, err := ValidateRequest(sel, progress.ModuleSet{})
		assert.ErrorIs(t, err, ErrNoModulesAvailable)
	}
}

func TestValidateRequest_NotAllowed(t *testing.T) {
	_, err := ValidateRequest("5", progress.NewModuleSet(1, 2, 3))

	var notAllowed *ErrModuleNotAllowed
	require.True(t, errors.As(err, &notAllowed), "expected ErrModuleNotAllowed, got %v", err)
	assert.Equal(t, progress.ModuleID(5), notAllowed.Module)
	assert.Equal(t, []progress.ModuleID{1, 2, 3}, notAllowed.Allowed)
	assert.Contains(t, err.Error(), "allowed: 1, 2, 3")
}

func TestValidateRequest_NamesFirstOffendingModule(t *testing.T) {
	_, err := ValidateRequest("9, 2, 7", progress.NewModuleSet(1, 2, 3))

	var notAllowed *ErrModuleNotAllowed
	require.True(t, errors.As(err, &notAllowed))
	assert.Equal(t, progress.ModuleID(7), notAllowed.Module)
}

func TestValidateRequest_ListsAndRanges(t *testing.T) {
	allowed := progress.NewModuleSet(1, 2, 3, 4, 5, 10)

	tests := []struct {
		sel  string
		want []progress.ModuleID
	}{
		{"2", []progress.ModuleID{2}},
		{"3,1,3", []progress.ModuleID{1, 3}},
		{"2-4", []progress.ModuleID{2, 3, 4}},
		{" 10 , 1-2 ", []progress.ModuleID{1, 2, 10}},
		{"1,abc,,4", []progress.ModuleID{1, 4}},
		{"5-3,2", []progress.ModuleID{2}},
	}
	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			got, err := ValidateRequest(tt.sel, allowed)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateRequest_InvalidParameter(t *testing.T) {
	for _, sel := range []string{"abc", "0", "-1", ",,", "x-y", "5-3"} {
		t.Run(sel, func(t *testing.T) {
			_, err := ValidateRequest(sel, progress.NewModuleSet(1))
			var invalid *ErrInvalidModuleParameter
			require.True(t, errors.As(err, &invalid), "expected ErrInvalidModuleParameter, got %v", err)
			assert.Equal(t, sel, invalid.Param)
		})
	}
}

func TestValidateRequest_WideRanges(t *testing.T) {
	allowed := progress.ModuleSet{}
	for id := progress.ModuleID(1); id <= 150; id++ {
		allowed.Add(id)
	}

	got, err := ValidateRequest("1-150", allowed)
	require.NoError(t, err)
	assert.Len(t, got, 150)
	assert.Equal(t, progress.ModuleID(150), got[149])

	_, err = ValidateRequest("140-1000000000000", allowed)
	var notAllowed *ErrModuleNotAllowed
	require.True(t, errors.As(err, &notAllowed), "expected ErrModuleNotAllowed, got %v", err)
	assert.Equal(t, progress.ModuleID(151), notAllowed.Module)

	_, err = ValidateRequest("1-1000, 3", progress.NewModuleSet(1))
	require.True(t, errors.As(err, &notAllowed))
	assert.Equal(t, progress.ModuleID(2), notAllowed.Module)
}

func TestParse(t *testing.T) {
	assert.Equal(t, []Span{{7, 7}, {1, 3}, {2, 2}}, Parse("7,1-3,2"))
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("0,-1,4-2,x"))
}
