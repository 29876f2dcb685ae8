// Package protocol speaks the newline-delimited command protocol of maze
// simulators such as mms.
//
// Mouse is the robot side: it writes one command per line and reads typed
// responses, implementing engine.Mouse and engine.Display. Serve is the simulator
// side, answering the same commands from any engine.Mouse. The two ends are used
// together by the mouse CLI's simulate mode and by tests.
//
// Commands:
//
//	mazeWidth | mazeHeight              -> integer
//	wallFront | wallLeft | wallRight    -> true | false
//	moveForward [n]                     -> ack | crash
//	turnLeft | turnRight | ackReset     -> ack
//	wasReset                            -> true | false
//	setWall x y d | clearWall x y d     (no response)
//	setColor x y c | clearColor x y     (no response)
//	clearAllColor | clearAllText        (no response)
//	setText x y text | clearText x y    (no response)
package protocol
