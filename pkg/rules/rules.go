// Package rules holds the static detection rule table: one or more regular
// expressions per feature key. A feature is only detectable (and therefore
// only ever reported) when its key appears here. The table is compiled once
// at program start and consumed read-only.
package rules

import "regexp"

var Table = map[string][]*regexp.Regexp{
	"queryselector":             {regexp.MustCompile(`\.querySelector\s*(?:All)*\(`)},
	"getelementsbyclassname":    {regexp.MustCompile(`\.getElementsByClassName\s*\(`)},
	"webworkers":                {regexp.MustCompile(`new\s*Worker\s*\(`)},
	"hashchange":                {regexp.MustCompile(`(\.onhashchange\s*=|\.addEventListener\s*\(\s*('|")hashchange('|"))`)},
	"sharedworkers":             {regexp.MustCompile(`new\s*SharedWorker\s*\(`)},
	"canvas":                    {regexp.MustCompile(`\.getContext\s*\(\s*(?:'|")2d(?:'|")\s*\)`)},
	"canvas-text":               {regexp.MustCompile(`\.(?:strokeText\s*\(|fillText\s*\(|measureText\s*\()`)},
	"namevalue-storage":         {regexp.MustCompile(`(?:localStorage|sessionStorage)\.`)},
	"sql-storage":               {regexp.MustCompile(`=\s(?:.*?)openDatabase\s*\(`)},
	"indexeddb":                 {regexp.MustCompile(`=\s(?:.*?)indexedDB`)},
	"eventsource":               {regexp.MustCompile(`=\s*new\s*EventSource\s*\(`)},
	"x-doc-messaging":           {regexp.MustCompile(`(\.addEventListener\s*\(\s*(?:'|")message(?:'|")|\.postMessage\s*\()`)},
	"geolocation":               {regexp.MustCompile(`navigator\.geolocation`)},
	"webgl":                     {regexp.MustCompile(`=\s*initWebGL\(`)},
	"shadowdom":                 {regexp.MustCompile(`\.createShadowRoot\s*\(\s*\)`)},
	"websockets":                {regexp.MustCompile(`=\s*new\s*WebSocket\s*\(\s*\)`)},
	"script-async":              {regexp.MustCompile(`<\s*script\s*.*async.*?>`)},
	"cors":                      {regexp.MustCompile(`\.withCredentials\s*=\s*('|")?true('|")?`)},
	"json":                      {regexp.MustCompile(`JSON\.(?:parse|stringify)\s*\(`)},
	"classlist":                 {regexp.MustCompile(`\.classList\.(remove|add|toggle|contains)\s*\(`)},
	"notifications":             {regexp.MustCompile(`=\s*new\s*Notification\s*\(`)},
	"stream":                    {regexp.MustCompile(`\.getUserMedia\s*\(`)},
	"touch":                     {regexp.MustCompile(`\.addEventListener\s*\(\s*(?:'|")touch(?:start|end|move|cancel)(?:'|")`)},
	"matchesselector":           {regexp.MustCompile(`\.matches(Selector)?\s*\(\s*(?:'|").*?\s*(?:'|")\s*\)`)},
	"blobbuilder":               {regexp.MustCompile(`(window\.(?:Moz|WebKit)?BlobBuilder|=\s*new\s*Blob\()`)},
	"createObjectURL":           {regexp.MustCompile(`\.createObjectURL\s*\(`)},
	"rellist":                   {regexp.MustCompile(`\.relList`)},
	"typedarrays":               {regexp.MustCompile(`=\s*new\s*((?:(?:Ui|I)nt)|Float)(?:8|16|32|64)?(?:Clamped)?Array\s*\(`)},
	"deviceorientation":         {regexp.MustCompile(`\.DeviceOrientationEvent\s*\)|\.addEventListener\s*\(\s*('|")deviceorientation('|")\s*,`)},
	"script-defer":              {regexp.MustCompile(`<\s*script\s*.*defer.*?>`)},
	"nav-timing":                {regexp.MustCompile(`performance\.(?:timing|navigation)`)},
	"audio-api":                 {regexp.MustCompile(`\.(?:AudioContext|webkitAudioContext)`)},
	"fullscreen":                {regexp.MustCompile(`(?:ms|moz|webkit)?(?:r|R)equestFull(?:S|s)creen\s*\(.*?\)`)},
	"requestanimationframe":     {regexp.MustCompile(`\.(?:webkit|moz)?(?:r|R)equestAnimationFrame`)},
	"matchmedia":                {regexp.MustCompile(`\.matchMedia\s*\(`)},
	"getcomputedstyle":          {regexp.MustCompile(`\.getComputedStyle\s*\(`)},
	"pagevisibility":            {regexp.MustCompile(`('|")(?:moz|ms|webkit)?visibilitychange('|")`)},
	"pointer":                   {regexp.MustCompile(`(?:\.pointerType|\.pointerEnabled|pointer(?:down|up|cancel|move|over|out|enter|leave)|(?:got|lost)pointercapture)`)},
	"cryptography":              {regexp.MustCompile(`\.(?:ms)?(?:c|C)rypto(?:\.subtle)?`)},
	"template":                  {regexp.MustCompile(`\.content(?:\s*(?:;|,|\))|\.)`), regexp.MustCompile(`\.importNode\s*`)},
	"channel-messaging":         {regexp.MustCompile(`=\s*new\s*MessageChannel\s*\(\s*\)`)},
	"mutationobserver":          {regexp.MustCompile(`=\s*new\s*MutationObserver\s*\(`)},
	"canvas-blending":           {regexp.MustCompile(`\.globalCompositeOperation\s*=`)},
	"clipboard":                 {regexp.MustCompile(`new\s*ClipboardEvent\s*\(|\.addEventListener\s*\(\s*(?:'|")(before)?(?:copy|cut|paste)(?:'|")`)},
	"rtcpeerconnection":         {regexp.MustCompile(`\.(?:moz|webkit)?RTCPeerConnection`)},
	"vibration":                 {regexp.MustCompile(`\.vibrate\s*\(`)},
	"web-speech":                {regexp.MustCompile(`=\s*new\s*(?:webkit)SpeechRecognition\s*\(\s*\)`)},
	"high-resolution-time":      {regexp.MustCompile(`performance\.now\s*\(\s*\)`)},
	"battery-status":            {regexp.MustCompile(`\.(?:mozB|webkitB|b)?attery(?:\s*)(?:;)?`)},
	"speech-synthesis":          {regexp.MustCompile(`=\s*new\s*SpeechSynthesisUtterance\s*\(\s*\)`)},
	"user-timing":               {regexp.MustCompile(`performance\.(?:mark|clearMarks|measure|clearMeasure)\s*\(`)},
	"ambient-light":             {regexp.MustCompile(`\.addEventListener\s*\(\s*(?:'|")devicelight(?:'|")\s*,`)},
	"domcontentloaded":          {regexp.MustCompile(`\.addEventListener\s*\(\s*(?:'|")DOMContentLoaded(?:'|")\s*,`)},
	"proximity":                 {regexp.MustCompile(`\.addEventListener\s*\(\s*(?:'|")deviceproximity(?:'|")\s*,`)},
	"gamepad":                   {regexp.MustCompile(`\.(?:webkitG|g)?etGamepads\s*\(\s*\)`)},
	"font-loading":              {regexp.MustCompile(`(?:\.fonts.(?:add|load|ready)\s*\(|new\s*FontFace\s*\()`)},
	"screen-orientation":        {regexp.MustCompile(`\.addEventListener\s*\(\s*(?:'|")(?:moz|webkit|ms)?orientationchange(?:'|")`)},
	"getrandomvalues":           {regexp.MustCompile(`\.(?:ms)?(?:c|C)rypto.getRandomValues\s*\(`)},
	"css-supports-api":          {regexp.MustCompile(`CSS.supports\s*\(`)},
	"atob-btoa":                 {regexp.MustCompile(`\.(?:atob|btoa)\s*\(`)},
	"imports":                   {regexp.MustCompile(`\.querySelector(?:All)?\s*\((?:'|")link\[rel=(?:'|")import(?:'|")](?:'|")`)},
	"resource-timing":           {regexp.MustCompile(`\.getEntriesByType\s*\(\s*(?:'|")resource(?:'|")\s*\)`)},
	"web-animation":             {regexp.MustCompile(`(?:\S*?)\.animate\s*\(\s*`)},
	"custom-elements":           {regexp.MustCompile(`(?:\S*?)\.registerElement\s*\(\s*(?:'|")\S*?(?:'|")`)},
	"filereader":                {regexp.MustCompile(`=\s*new\s*FileReader\s*\(\s*\)`)},
	"filesystem":                {regexp.MustCompile(`\.(?:r|webkitR)equestFileSystem`)},
	"fileapi":                   {regexp.MustCompile(`(?:\.dataTransfer|\.files(?:\[\d*?]|\.item|\.length|\s*;))`)},
	"promises":                  {regexp.MustCompile(`=\s*new\s*Promise\s*\(`)},
	"obj-create":                {regexp.MustCompile(`Object\.create\s*\(`)},
	"obj-defineproperty":        {regexp.MustCompile(`Object\.defineProperty\s*\(`)},
	"obj-defineproperties":      {regexp.MustCompile(`Object\.defineProperties\s*\(`)},
	"obj-getprototypeof":        {regexp.MustCompile(`Object\.getPrototypeOf\s*\(`)},
	"obj-keys":                  {regexp.MustCompile(`Object\.keys\s*\(`)},
	"obj-seal":                  {regexp.MustCompile(`Object\.seal\s*\(`)},
	"obj-freeze":                {regexp.MustCompile(`Object\.freeze\s*\(`)},
	"obj-preventextensions":     {regexp.MustCompile(`Object\.preventExtensions\s*\(`)},
	"obj-issealed":              {regexp.MustCompile(`Object\.isSealed\s*\(`)},
	"obj-isfrozen":              {regexp.MustCompile(`Object\.isFrozen\s*\(`)},
	"obj-isextensible":          {regexp.MustCompile(`Object\.isExtensible\s*\(`)},
	"obj-getownpropertydesc":    {regexp.MustCompile(`Object\.getOwnPropertyDescriptor\s*\(`)},
	"obj-getownpropertynames":   {regexp.MustCompile(`Object\.getOwnPropertyNames\s*\(`)},
	"date-toisostring":          {regexp.MustCompile(`\.toISOString\s(\(\s*)`)},
	"date-now":                  {regexp.MustCompile(`Date\.now\s*\(\s*\)`)},
	"array-isarray":             {regexp.MustCompile(`Array\.isArray\s*\(`)},
	"function-bind":             {regexp.MustCompile(`\.bind\s*\(`)},
	"string-trim":               {regexp.MustCompile(`\.trim\s*\(\s*\)`)},
	"array-indexof":             {regexp.MustCompile(`\.indexOf\s*\(.*?(?:,.*?)?\s*\)`)},
	"array-lastindexof":         {regexp.MustCompile(`\.lastIndexOf\s*\(.*?(?:,.*?)?\s*\)`)},
	"array-every":               {regexp.MustCompile(`\.every\s*\(\s*(?:function|\S*?(?:,\s*\S*?)?\s*\))`)},
	"array-some":                {regexp.MustCompile(`\.some\s*\(\s*(?:function|\S*?(?:,\s*\S*?)?\s*\))`)},
	"array-foreach":             {regexp.MustCompile(`\.forEach\s*\(\s*(?:function|\S*?(?:,\s*\S*?)?\s*\))`)},
	"array-map":                 {regexp.MustCompile(`\.map\s*\(\s*(?:function|\S*?(?:,\s*\S*?)?\s*\))`)},
	"array-filter":              {regexp.MustCompile(`\.filter\s*\(\s*(?:function|\S*?(?:,\s*\S*?)?\s*\))`)},
	"array-reduce":              {regexp.MustCompile(`\.reduce\s*\(\s*(?:function|\S*?(?:,\s*\S*?)?\s*\))`)},
	"array-reduceRight":         {regexp.MustCompile(`\.reduceRight\s*\(\s*(?:function|\S*?(?:,\s*\S*?)?\s*\))`)},
	"strict-mode":               {regexp.MustCompile(`('|")use strict('|")`)},
}

// Patterns returns the detection patterns for a feature key.
func Patterns(key string) ([]*regexp.Regexp, bool) {
	p, ok := Table[key]
	return p, ok
}

// Has reports whether a feature key is detectable.
func Has(key string) bool {
	_, ok := Table[key]
	return ok
}

// Count returns the number of detectable feature keys.
func Count() int {
	return len(Table)
}
