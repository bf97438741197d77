package objyaml_test

import (
	"errors"
	"fmt"

	"github.com/signadot/objyaml"
	"github.com/signadot/objyaml/construct"
	"github.com/signadot/objyaml/symbol"
)

type corruptor struct {
	Level float64 `objyaml:"corruption_level"`
}

func ExampleLoadString() {
	v, err := objyaml.LoadString(`{"nvis": &n 100, "act": !import 'math.sqrt', "nhid": *n }`)
	if err != nil {
		panic(err)
	}
	m := v.(map[string]any)
	fmt.Println(m["nvis"], m["nhid"], m["act"].(func(float64) float64)(16))
	// Output: 100 100 4
}

func ExampleRegister() {
	objyaml.Register(symbol.NewModule("example.corruption").
		Define("BinomialCorruptor", construct.Struct[corruptor]()))
	v, err := objyaml.LoadString(`c: !obj:example.corruption.BinomialCorruptor {corruption_level: 0.5}`)
	if err != nil {
		panic(err)
	}
	fmt.Println(v.(map[string]any)["c"].(*corruptor).Level)
	_, err = objyaml.LoadString(`c: !obj:example.corruption.Missing {}`)
	fmt.Println(errors.Is(err, objyaml.ErrAttribute))
	// Output:
	// 0.5
	// true
}
