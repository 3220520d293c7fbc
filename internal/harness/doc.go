// Package harness runs conformance scenarios against compiled patches.
//
// A scenario names a directory of CUE patches, the patch under test, a
// transport and a list of cases. Each case calls the patch function in
// the reference interpreter and checks the result lanes and form, or the
// runtime error code.
//
// # Scenario Format
//
//	name: tone_pan
//	description: "A4 panned hard left"
//	specs: ../patches
//	patch: tone
//	transport: { tempo: 120, sample_rate: 48000 }
//	cases:
//	  - name: a4_left
//	    args:
//	      pitch: { lanes: [69], form: note }
//	      position: -1
//	    expect:
//	      lanes: [440, 0]
//	      form: frequency
//	      tolerance: 1e-9
//
// A bare number is a num with that value in both lanes and no form. An
// array param takes slots; a null slot is inactive, and a slot marked
// inactive keeps its form tag without a value:
//
//	voices:
//	  slots:
//	    - { lanes: [0.5, 0.25], form: amplitude }
//	    - null
//	    - { form: amplitude, inactive: true }
//
// A case that should fault names the runtime error code instead:
//
//	expect: { error: POISON_READ }
//
// # Transport
//
// By default the patch reads the transport globals, which the interpreter
// initialises per call; a case may override the tempo. With fixed: true
// the transport is baked into the code as constants, so per-case tempo
// overrides have no effect.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/tone.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range result.Errors {
//	    log.Println(msg)
//	}
package harness
