package harness

// PHPDriver is the fixed test driver staged next to a PHP submission.
// Unlike the other languages the user code is never rewritten: the driver
// requires it as-is, takes the target function name as its first argument
// and reads the serialized test cases from a fixed mount path. Scalars
// compare loosely so 10 and 10.0 agree; arrays compare by serialized form.
const PHPDriver = `<?php
error_reporting(E_ALL & ~E_DEPRECATED & ~E_NOTICE);

require __DIR__ . '/solution.php';

$fn = $argv[1] ?? null;
if ($fn === null || !function_exists($fn)) {
    fwrite(STDERR, "driver: function not found: " . ($fn ?? '(none)') . "\n");
    exit(1);
}

$tests = json_decode(file_get_contents(__DIR__ . '/testcases.json'), true);
if (!is_array($tests)) {
    fwrite(STDERR, "driver: failed to decode test cases\n");
    exit(1);
}

function cq_compare($expected, $actual) {
    if (is_array($expected) || is_object($expected)) {
        return json_encode($expected) === json_encode($actual);
    }
    return $expected == $actual;
}

foreach ($tests as $i => $t) {
    $record = ['index' => $i, 'passed' => false, 'output' => null, 'error' => null];
    try {
        $input = $t['input'];
        if (count($input) === 1 && is_array($input[0])) {
            $out = call_user_func($fn, $input[0]);
        } else {
            $out = call_user_func_array($fn, $input);
        }
        $record['output'] = $out;
        $record['passed'] = cq_compare($t['expected'], $out);
    } catch (Throwable $e) {
        $record['error'] = $e->getMessage();
    }
    echo json_encode($record), "\n";
}
`
