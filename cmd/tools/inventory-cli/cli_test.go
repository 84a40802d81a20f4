package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		headers []string
		rows    int
		first   []interface{}
	}{
		{
			name:    "comma",
			input:   "Producto,Precio\nParacetamol,2.00\nIbuprofeno,3.50\n",
			headers: []string{"Producto", "Precio"},
			rows:    2,
			first:   []interface{}{"Paracetamol", "2.00"},
		},
		{
			name:    "semicolon with decimal comma and BOM",
			input:   "\ufeffProducto;Precio\r\nParacetamol;2,00\r\n",
			headers: []string{"Producto", "Precio"},
			rows:    1,
			first:   []interface{}{"Paracetamol", "2,00"},
		},
		{
			name:    "ragged rows",
			input:   "Producto\tPrecio\tStock\nGasas\t1\n",
			headers: []string{"Producto", "Precio", "Stock"},
			rows:    1,
			first:   []interface{}{"Gasas", "1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers, rows, err := readCSV(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.headers, headers)
			require.Len(t, rows, tt.rows)
			assert.Equal(t, tt.first, rows[0])
		})
	}

	_, _, err := readCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func run(t *testing.T, args ...string) map[string]interface{} {
	t.Helper()
	path := filepath.Join(t.TempDir(), "farmacia.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"Producto;Costo;Precio;Existencia;Stock Minimo;Vencimiento\n"+
			"Paracetamol 500mg;1,20;2,00;3;10;2030-01-01\n"+
			"Amoxicilina;3;5;4;10;2020-01-01\n"), 0o600))

	csvFile, cfgFile, role, rate, verbose = "", "", "", 0, false
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "-f", path))
	require.NoError(t, rootCmd.Execute())

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &m))
	return m
}

func TestAskCommand(t *testing.T) {
	m := run(t, "ask", "--rate", "40", "cuanto cuesta el paracetamol")
	answer, ok := m["answer"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, answer["found"])
	assert.Equal(t, "Paracetamol 500mg", answer["product"])
	assert.Equal(t, 40.0, answer["rate"])
}

func TestSummarizeCommand(t *testing.T) {
	m := run(t, "summarize", "expired")
	assert.Equal(t, "expired", m["kind"])
	assert.NotNil(t, m["expired"])
}

func TestSchemaCommand(t *testing.T) {
	m := run(t, "schema")
	assert.Equal(t, true, m["success"])
	assert.Equal(t, 2.0, m["rowCount"])
}
