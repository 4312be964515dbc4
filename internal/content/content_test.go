package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/assetforge/internal/params"
)

func TestCleanPath(t *testing.T) {
	cases := map[string]string{
		"textures/hero.png":    "textures/hero.png",
		"./textures/hero.png":  "textures/hero.png",
		`textures\ui\icon.png`: "textures/ui/icon.png",
		"textures//a/../b.png": "textures/b.png",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanPath(in), "input %q", in)
	}
}

func TestVariants_SkipsUndeclaredBundles(t *testing.T) {
	// --- Arrange ---
	c := New("Game", "/src", "/out")
	require.NoError(t, c.AddBundle(NewBundle("pc")))
	require.NoError(t, c.AddBundle(NewBundle("mobile")))

	a := NewAsset("hero.png", "Texture2DProcessor")
	a.OverrideBundle("mobile", params.Of("max_size", "256"))
	a.OverrideBundle("console", params.Of("max_size", "2048"))
	a.OverrideBundle("pc", params.New())

	// --- Act ---
	variants := c.Variants(a)

	// --- Assert ---
	require.Len(t, variants, 2)
	assert.Equal(t, "mobile", variants[0].Name, "asset override order wins over bundle declaration order")
	assert.Equal(t, "pc", variants[1].Name)
}

func TestAddBundle_RejectsReservedAndDuplicateNames(t *testing.T) {
	c := New("Game", "/src", "/out")
	require.Error(t, c.AddBundle(NewBundle(BaseBundleName)))
	require.NoError(t, c.AddBundle(NewBundle("mobile")))
	require.Error(t, c.AddBundle(NewBundle("mobile")))
}

func TestAddAsset_RejectsDuplicatePath(t *testing.T) {
	c := New("Game", "/src", "/out")
	require.NoError(t, c.AddAsset(NewAsset("a.png", "")))
	require.Error(t, c.AddAsset(NewAsset("./a.png", "")))
}

func TestBundleOutputFolder(t *testing.T) {
	c := New("Game", "/src", "/out")
	assert.Equal(t, "", c.Base().OutputFolder())

	b := NewBundle("mobile")
	assert.Equal(t, "mobile", b.OutputFolder())
	b.OutputDir = "./platforms/android"
	assert.Equal(t, "platforms/android", b.OutputFolder())
}

func TestDeclarationHash_ChangesWithDeclaration(t *testing.T) {
	a := NewAsset("hero.png", "Texture2DProcessor")
	require.NoError(t, a.Parameters.Add("max_size", "512"))
	h1 := a.DeclarationHash()

	assert.Equal(t, h1, a.DeclarationHash(), "hash must be stable")

	a.Parameters.Put("max_size", "256")
	h2 := a.DeclarationHash()
	assert.NotEqual(t, h1, h2, "parameter value change must change the hash")

	a.OverrideBundle("mobile", params.Of("format", "rgb565"))
	h3 := a.DeclarationHash()
	assert.NotEqual(t, h2, h3, "bundle override must change the hash")

	a.Processor = "PassThroughProcessor"
	assert.NotEqual(t, h3, a.DeclarationHash(), "processor change must change the hash")
}

func TestHash_IgnoresParameterInsertionOrder(t *testing.T) {
	h1 := Hash("a.png", "P", Variant{Name: BaseBundleName, Parameters: params.Of("x", "1", "y", "2")})
	h2 := Hash("a.png", "P", Variant{Name: BaseBundleName, Parameters: params.Of("y", "2", "x", "1")})
	assert.Equal(t, h1, h2)
}

func TestHash_FieldsDoNotRunTogether(t *testing.T) {
	h1 := Hash("a.png", "P", Variant{Name: BaseBundleName, Parameters: params.Of("ab", "c")})
	h2 := Hash("a.png", "P", Variant{Name: BaseBundleName, Parameters: params.Of("a", "bc")})
	assert.NotEqual(t, h1, h2)
}
